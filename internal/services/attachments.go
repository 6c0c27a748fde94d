package services

import (
	"errors"
	"fmt"
	"log"
	"os"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/storage"

	"gorm.io/gorm"
)

type AttachmentService interface {
	GetByID(db *gorm.DB, id uint) (models.Attachment, error)
	ListForUser(db *gorm.DB, userID uint) ([]models.Attachment, error)
	Delete(db *gorm.DB, id, requestingUserID uint) (models.Attachment, error)
}

type AttachmentServiceImpl struct {
	paths storage.Paths
}

func NewAttachmentService(paths storage.Paths) *AttachmentServiceImpl {
	return &AttachmentServiceImpl{paths: paths}
}

func (s *AttachmentServiceImpl) GetByID(db *gorm.DB, id uint) (models.Attachment, error) {
	var attachment models.Attachment
	result := db.Where("id = ?", id).First(&attachment)
	return attachment, result.Error
}

// ListForUser returns attachments linked to tasks owned by userID. Orphans
// (no linked task) are excluded.
func (s *AttachmentServiceImpl) ListForUser(db *gorm.DB, userID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	result := db.
		Joins("JOIN tasks ON tasks.id = attachments.task_id").
		Where("tasks.owner_id = ?", userID).
		Find(&attachments)
	return attachments, result.Error
}

// Delete removes one attachment, file first, row second. A linked attachment
// may only be deleted by the owner of its task; an orphan only by its
// uploader. The file is deleted before the row so a failed file removal
// leaves the row behind as a cleanup marker instead of silently stranding
// the file. A reference that resolves outside the upload root is logged and
// the file left untouched, but the row is still removed.
func (s *AttachmentServiceImpl) Delete(db *gorm.DB, id, requestingUserID uint) (models.Attachment, error) {
	var attachment models.Attachment
	if err := db.Where("id = ?", id).First(&attachment).Error; err != nil {
		return attachment, err
	}

	if attachment.TaskID != nil {
		var task models.Task
		err := db.Where("id = ?", *attachment.TaskID).First(&task).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return attachment, err
		}
		if err == nil && task.OwnerID != requestingUserID {
			return attachment, ErrForbidden
		}
	} else if attachment.UploaderID != requestingUserID {
		return attachment, ErrForbidden
	}

	if err := removeAttachmentFile(s.paths, attachment); err != nil {
		return attachment, err
	}

	if err := db.Delete(&models.Attachment{}, "id = ?", id).Error; err != nil {
		return attachment, fmt.Errorf("delete attachment row: %w", err)
	}
	return attachment, nil
}

// removeAttachmentFile deletes the file behind an attachment's stored
// reference. Missing files and corrupt references are tolerated; a live file
// that cannot be removed is an error so the row survives as evidence.
func removeAttachmentFile(paths storage.Paths, attachment models.Attachment) error {
	diskPath, err := paths.DiskPath(attachment.FilePath)
	if err != nil {
		log.Printf("attachment %d has corrupt stored reference %q, leaving file alone", attachment.ID, attachment.FilePath)
		return nil
	}
	if err := os.Remove(diskPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment file: %w", err)
	}
	return nil
}
