package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/basit/filestore-backend/models"
	"github.com/basit/filestore-backend/storage"
)

// DefaultGracePeriod keeps the job away from blobs whose upload may still be
// waiting on its record insert.
const DefaultGracePeriod = 5 * time.Minute

// CleanupReport summarises one reconciliation pass.
type CleanupReport struct {
	OrphanedBlobs   int // blobs with no record, removed
	DanglingRecords int // records whose blob is gone, logged only
}

// Cleanup reconciles the blob store with the files table. Orphaned blobs are
// deleted; dangling records are left so that download and view keep
// answering 404 for them.
type Cleanup struct {
	db          *gorm.DB
	store       storage.BlobStore
	logger      *slog.Logger
	gracePeriod time.Duration
	now         func() time.Time
}

func NewCleanup(db *gorm.DB, store storage.BlobStore, logger *slog.Logger) *Cleanup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleanup{
		db:          db,
		store:       store,
		logger:      logger,
		gracePeriod: DefaultGracePeriod,
		now:         time.Now,
	}
}

// StartCleanupJob runs a pass every interval until ctx is done. A
// non-positive interval disables the job.
func (j *Cleanup) StartCleanupJob(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		j.logger.Info("cleanup job disabled")
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := j.RunOnce(ctx); err != nil {
					j.logger.Error("cleanup pass failed", "error", err)
				}
			}
		}
	}()
}

// RunOnce performs a single reconciliation pass.
func (j *Cleanup) RunOnce(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	blobs, err := j.store.List(ctx)
	if err != nil {
		return report, fmt.Errorf("list blobs: %w", err)
	}

	var records []models.File
	if err := j.db.WithContext(ctx).Select("id", "filename", "file_path").Find(&records).Error; err != nil {
		return report, fmt.Errorf("list file records: %w", err)
	}

	// matched on storage name; the directory in a stored path follows UPLOAD_FOLDER as spelled at upload time
	referenced := make(map[string]struct{}, len(records))
	for _, r := range records {
		referenced[r.Filename] = struct{}{}
	}

	present := make(map[string]struct{}, len(blobs))
	cutoff := j.now().Add(-j.gracePeriod)
	for _, blob := range blobs {
		name := blobName(blob.Path)
		present[name] = struct{}{}
		if _, ok := referenced[name]; ok {
			continue
		}
		if blob.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Remove(ctx, blob.Path); err != nil {
			j.logger.Error("failed to remove orphaned blob", "path", blob.Path, "error", err)
			continue
		}
		report.OrphanedBlobs++
		j.logger.Info("removed orphaned blob", "path", blob.Path, "size", blob.Size)
	}

	for _, r := range records {
		if _, ok := present[r.Filename]; !ok {
			report.DanglingRecords++
			j.logger.Warn("file record has no blob", "id", r.ID, "path", r.FilePath)
		}
	}

	j.logger.Info("cleanup pass complete",
		"blobs", len(blobs),
		"records", len(records),
		"orphaned_blobs_removed", report.OrphanedBlobs,
		"dangling_records", report.DanglingRecords,
	)
	return report, nil
}

// blobName returns the last element of a local path or object key.
func blobName(p string) string {
	return path.Base(filepath.ToSlash(p))
}
