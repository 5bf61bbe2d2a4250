package initializers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/basit/filestore-backend/storage"
)

// InitBlobStore builds the blob store selected by STORAGE_BACKEND.
func InitBlobStore(ctx context.Context, cfg *Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case "local":
		store, err := storage.NewLocalStore(cfg.UploadFolder)
		if err != nil {
			return nil, err
		}
		slog.Info("using local blob storage", "dir", store.Dir())
		return store, nil
	case "s3":
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("using S3 blob storage",
			"bucket", cfg.AWSBucket,
			"region", cfg.AWSRegion,
			"endpoint", cfg.AWSEndpoint,
			"prefix", cfg.AWSKeyPrefix,
		)
		return storage.NewS3Store(client, cfg.AWSBucket, cfg.AWSKeyPrefix)
	}
	return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
}
