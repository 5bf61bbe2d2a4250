package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/basit/filestore-backend/services"
)

// FileHandler serves the /api/files endpoints.
type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.files.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *FileHandler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("File too large. Maximum upload size is %d MB", maxErr.Limit>>20),
			})
			return
		}
		// multipart parses a part with an empty filename as a plain value
		if form := c.Request.MultipartForm; form != nil {
			if _, ok := form.Value["file"]; ok {
				respondError(c, services.ErrNoFileSelected)
				return
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	file, err := h.files.Upload(c.Request.Context(), header.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

// DownloadFile streams the blob as an attachment named after the original filename.
func (h *FileHandler) DownloadFile(c *gin.Context) {
	file, rc, err := h.files.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension("." + file.FileType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": file.OriginalFilename})

	// The blob may have changed since upload, so the length is left to the transfer encoding.
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func (h *FileHandler) ViewFile(c *gin.Context) {
	content, err := h.files.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// respondError maps service errors to status codes. Anything unrecognised is
// a 500 carrying the raw error text.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, services.ErrNoFileSelected):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
	case errors.Is(err, services.ErrFileTypeNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "File type not allowed. Allowed types: " + strings.Join(services.AllowedExtensions(), ", "),
		})
	case errors.Is(err, services.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
	case errors.Is(err, services.ErrBlobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found on server"})
	case errors.Is(err, services.ErrFileNotViewable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not viewable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
