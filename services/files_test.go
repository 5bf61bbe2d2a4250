package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/basit/filestore-backend/models"
	"github.com/basit/filestore-backend/storage"
)

// setupTestService wires a FileService to a throwaway SQLite file and upload directory.
func setupTestService(t *testing.T) (*FileService, *gorm.DB, *storage.LocalStore) {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.File{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	return NewFileService(db, store, nil), db, store
}

func countFiles(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.File{}).Count(&n).Error)
	return n
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"notes.txt", "txt", false},
		{"REPORT.PDF", "pdf", false},
		{"photo.JpEg", "jpeg", false},
		{"archive.tar.json", "json", false},
		{".txt", "txt", false},
		{"noextension", "", true},
		{"file.", "", true},
		{"script.exe", "", true},
		{"data.json.exe", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			got, err := ExtensionOf(tc.filename)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrFileTypeNotAllowed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAllowedExtensions(t *testing.T) {
	assert.Equal(t, []string{"gif", "jpeg", "jpg", "json", "pdf", "png", "txt"}, AllowedExtensions())

	// callers get a copy
	exts := AllowedExtensions()
	exts[0] = "exe"
	assert.NotContains(t, AllowedExtensions(), "exe")
}

func TestIsViewable(t *testing.T) {
	assert.True(t, IsViewable("txt"))
	assert.True(t, IsViewable("json"))
	for _, ext := range []string{"pdf", "png", "jpg", "jpeg", "gif", ""} {
		assert.False(t, IsViewable(ext), ext)
	}
}

func TestFileService_UploadAllowedTypes(t *testing.T) {
	ctx := context.Background()
	svc, _, store := setupTestService(t)

	for _, ext := range AllowedExtensions() {
		t.Run(ext, func(t *testing.T) {
			file, err := svc.Upload(ctx, "upload."+ext, strings.NewReader("payload"))
			require.NoError(t, err)

			_, err = uuid.Parse(file.ID)
			assert.NoError(t, err, "id comes from the model's create hook")
			assert.Equal(t, "upload."+ext, file.OriginalFilename)
			assert.Equal(t, ext, file.FileType)
			assert.Equal(t, int64(7), file.FileSize)
			assert.True(t, strings.HasSuffix(file.Filename, "."+ext))
			assert.Len(t, strings.TrimSuffix(file.Filename, "."+ext), 32)
			assert.Equal(t, filepath.Join(store.Dir(), file.Filename), file.FilePath)
			assert.False(t, file.CreatedAt.IsZero())

			files, err := svc.List(ctx)
			require.NoError(t, err)
			ids := make([]string, 0, len(files))
			for _, f := range files {
				ids = append(ids, f.ID)
			}
			assert.Contains(t, ids, file.ID)
		})
	}
}

func TestFileService_UploadRejected(t *testing.T) {
	ctx := context.Background()
	svc, db, store := setupTestService(t)

	_, err := svc.Upload(ctx, "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoFileSelected)

	for _, name := range []string{"README", "virus.exe", "image.bmp", "trailing."} {
		_, err := svc.Upload(ctx, name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrFileTypeNotAllowed, name)
	}

	assert.Zero(t, countFiles(t, db))
	blobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestFileService_UploadUppercaseExtension(t *testing.T) {
	svc, _, _ := setupTestService(t)

	file, err := svc.Upload(context.Background(), "Scan.PNG", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "png", file.FileType)
	assert.Equal(t, "Scan.PNG", file.OriginalFilename)
	assert.True(t, strings.HasSuffix(file.Filename, ".png"))
}

func TestFileService_UploadRemovesBlobWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	svc, db, store := setupTestService(t)

	require.NoError(t, db.Migrator().DropTable(&models.File{}))

	_, err := svc.Upload(ctx, "notes.txt", strings.NewReader("hello"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create file record")

	blobs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestFileService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	files, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := svc.Upload(ctx, name, strings.NewReader(name))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	files, err = svc.List(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(files))
	for _, f := range files {
		got = append(got, f.OriginalFilename)
	}
	assert.Equal(t, []string{"c.txt", "b.txt", "a.txt"}, got)
}

func TestFileService_Download(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	uploaded, err := svc.Upload(ctx, "image.png", strings.NewReader("\x89PNG\r\n"))
	require.NoError(t, err)

	file, rc, err := svc.Download(ctx, uploaded.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n", string(data))
	assert.Equal(t, "image.png", file.OriginalFilename)

	_, _, err = svc.Download(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_DownloadMissingBlob(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	uploaded, err := svc.Upload(ctx, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(uploaded.FilePath))

	_, _, err = svc.Download(ctx, uploaded.ID)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := setupTestService(t)

	uploaded, err := svc.Upload(ctx, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, uploaded.ID))

	_, err = os.Stat(uploaded.FilePath)
	assert.True(t, os.IsNotExist(err))
	assert.Zero(t, countFiles(t, db))

	assert.ErrorIs(t, svc.Delete(ctx, uploaded.ID), ErrFileNotFound)
	_, _, err = svc.Download(ctx, uploaded.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	_, err = svc.View(ctx, uploaded.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_DeleteWithMissingBlob(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := setupTestService(t)

	uploaded, err := svc.Upload(ctx, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(uploaded.FilePath))

	require.NoError(t, svc.Delete(ctx, uploaded.ID))
	assert.Zero(t, countFiles(t, db))
}

func TestFileService_ViewRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	content := "line one\nline two, ünïcödé\n"
	uploaded, err := svc.Upload(ctx, "My Notes.TXT", strings.NewReader(content))
	require.NoError(t, err)

	view, err := svc.View(ctx, uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Notes.TXT", view.Filename)
	assert.Equal(t, content, view.Content)
	assert.Equal(t, "txt", view.FileType)
}

func TestFileService_ViewErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupTestService(t)

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.View(ctx, "nope")
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("binary types are not viewable", func(t *testing.T) {
		for _, name := range []string{"doc.pdf", "img.png", "img.jpg", "img.jpeg", "anim.gif"} {
			f, err := svc.Upload(ctx, name, strings.NewReader("plain text inside"))
			require.NoError(t, err)
			_, err = svc.View(ctx, f.ID)
			assert.ErrorIs(t, err, ErrFileNotViewable, name)
		}
	})

	t.Run("missing blob", func(t *testing.T) {
		f, err := svc.Upload(ctx, "data.json", strings.NewReader(`{}`))
		require.NoError(t, err)
		require.NoError(t, os.Remove(f.FilePath))
		_, err = svc.View(ctx, f.ID)
		assert.ErrorIs(t, err, ErrBlobNotFound)
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		f, err := svc.Upload(ctx, "bad.txt", strings.NewReader("\xff\xfe\xfd"))
		require.NoError(t, err)
		_, err = svc.View(ctx, f.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrFileNotFound)
		assert.NotErrorIs(t, err, ErrFileNotViewable)
	})
}
