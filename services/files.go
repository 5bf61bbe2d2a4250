package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/basit/filestore-backend/models"
	"github.com/basit/filestore-backend/storage"
)

// FileContent is the decoded body of a viewable file.
type FileContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	FileType string `json:"file_type"`
}

// FileService ties blob storage to the files table. Blob and record writes
// are not transactional; see jobs.Cleanup for drift repair.
type FileService struct {
	db     *gorm.DB
	store  storage.BlobStore
	logger *slog.Logger
}

func NewFileService(db *gorm.DB, store storage.BlobStore, logger *slog.Logger) *FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{db: db, store: store, logger: logger}
}

// List returns every file record, newest first.
func (s *FileService) List(ctx context.Context) ([]models.File, error) {
	files := make([]models.File, 0)
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// Upload validates originalName, stores r under a generated name and inserts
// the record. The stored size is measured from the blob store, not the request.
func (s *FileService) Upload(ctx context.Context, originalName string, r io.Reader) (*models.File, error) {
	if originalName == "" {
		return nil, ErrNoFileSelected
	}
	ext, err := ExtensionOf(originalName)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	storageName := hex.EncodeToString(id[:]) + "." + ext

	path, err := s.store.Put(ctx, storageName, r)
	if err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}

	size, err := s.store.Stat(ctx, path)
	if err != nil {
		s.discardBlob(ctx, path)
		return nil, fmt.Errorf("measure file: %w", err)
	}

	file := &models.File{
		Filename:         storageName,
		OriginalFilename: originalName,
		FilePath:         path,
		FileSize:         size,
		FileType:         ext,
	}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		s.discardBlob(ctx, path)
		return nil, fmt.Errorf("create file record: %w", err)
	}

	s.logger.InfoContext(ctx, "file uploaded",
		"id", file.ID,
		"filename", file.Filename,
		"original_filename", file.OriginalFilename,
		"size", file.FileSize,
	)
	return file, nil
}

// Download returns the record and an open reader over its blob. The caller
// closes the reader.
func (s *FileService) Download(ctx context.Context, id string) (*models.File, io.ReadCloser, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.openBlob(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// Delete removes the blob (if still present) and then the record.
func (s *FileService) Delete(ctx context.Context, id string) error {
	file, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, file.FilePath); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.File{}, "id = ?", file.ID).Error; err != nil {
		s.logger.ErrorContext(ctx, "blob removed but record delete failed",
			"id", file.ID,
			"path", file.FilePath,
			"error", err,
		)
		return fmt.Errorf("delete file record: %w", err)
	}

	s.logger.InfoContext(ctx, "file deleted", "id", file.ID, "filename", file.Filename)
	return nil
}

// View reads a txt or json file as UTF-8 text.
func (s *FileService) View(ctx context.Context, id string) (*FileContent, error) {
	file, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsViewable(file.FileType) {
		return nil, ErrFileNotViewable
	}

	rc, err := s.openBlob(ctx, file)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			// view answers a missing blob the same way as an unknown id
			return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, errInvalidUTF8
	}

	return &FileContent{
		Filename: file.OriginalFilename,
		Content:  string(data),
		FileType: file.FileType,
	}, nil
}

func (s *FileService) find(ctx context.Context, id string) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return &file, nil
}

func (s *FileService) openBlob(ctx context.Context, file *models.File) (io.ReadCloser, error) {
	rc, err := s.store.Open(ctx, file.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotExist) {
			s.logger.WarnContext(ctx, "record has no blob", "id", file.ID, "path", file.FilePath)
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return rc, nil
}

// discardBlob undoes a Put whose record was never written.
func (s *FileService) discardBlob(ctx context.Context, path string) {
	if err := s.store.Remove(context.WithoutCancel(ctx), path); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete file from storage during cleanup",
			"path", path,
			"error", err,
		)
	}
}
