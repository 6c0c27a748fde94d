package handlers

import (
	"errors"
	"net/http"

	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UploadHandler struct {
	db            *gorm.DB
	uploadService services.UploadService
}

func NewUploadHandler(db *gorm.DB, uploadService services.UploadService) *UploadHandler {
	return &UploadHandler{db: db, uploadService: uploadService}
}

// Upload accepts a multipart file, stores it and returns the created
// attachment reference. The attachment starts unlinked; clients pass the
// returned id as attachment_ids/new_attachment_ids on the task endpoints.
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_file",
			"message": "Request must contain a multipart file field named 'file'",
		})
		return
	}
	defer file.Close()

	attachment, err := h.uploadService.Store(h.db, file, header.Filename, header.Header.Get("Content-Type"), userID)
	if err != nil {
		handleUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       attachment.ID,
		"url":      attachment.FilePath,
		"filename": attachment.Filename,
	})
}

func handleUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingFilename):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_filename",
			"message": "Uploaded file has no filename",
		})
	case errors.Is(err, services.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_file_type",
			"message": "Invalid file type",
		})
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "file_too_large",
			"message": "File exceeds the maximum upload size",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to store upload",
		})
	}
}
