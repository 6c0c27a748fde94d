package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttachmentHandler struct {
	db                *gorm.DB
	attachmentService services.AttachmentService
}

func NewAttachmentHandler(db *gorm.DB, attachmentService services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{db: db, attachmentService: attachmentService}
}

// MyFiles lists the requester's task-linked attachments. Orphan uploads are
// not included.
func (h *AttachmentHandler) MyFiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.ListForUser(h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list attachments"})
		return
	}

	files := make([]gin.H, 0, len(attachments))
	for _, a := range attachments {
		files = append(files, gin.H{
			"id":       a.ID,
			"filename": a.Filename,
			"url":      a.FilePath,
		})
	}
	c.JSON(http.StatusOK, files)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	attachment, err := h.attachmentService.Delete(h.db, uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Not enough permissions",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete attachment"})
		}
		return
	}

	c.JSON(http.StatusOK, attachment)
}
