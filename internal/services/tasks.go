package services

import (
	"fmt"
	"log"
	"strconv"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/storage"

	"gorm.io/gorm"
)

// TaskUpdate carries the mutable task fields. Nil pointers mean "leave
// unchanged"; NewAttachmentIDs link additional uploads without unlinking
// anything already attached.
type TaskUpdate struct {
	Title            *string
	Description      *string
	IsCompleted      *bool
	NewAttachmentIDs []uint
}

type TaskService interface {
	CreateTask(db *gorm.DB, task models.Task, attachmentIDs []uint) (models.Task, error)
	GetTaskByID(db *gorm.DB, id uint) (models.Task, error)
	GetTasksByOwner(db *gorm.DB, ownerID uint, sortBy, order, page, pageSize string) ([]models.Task, int64, error)
	UpdateTask(db *gorm.DB, id uint, update TaskUpdate) error
	DeleteTask(db *gorm.DB, id uint) error
}

type TaskServiceImpl struct {
	paths storage.Paths
}

func NewTaskService(paths storage.Paths) *TaskServiceImpl {
	return &TaskServiceImpl{paths: paths}
}

// CreateTask persists the task and links the given attachment ids to it.
// Ids that don't resolve to a linkable attachment are silently ignored.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task, attachmentIDs []uint) (models.Task, error) {
	if err := db.Create(&task).Error; err != nil {
		return task, err
	}
	if err := linkAttachments(db, task.ID, attachmentIDs); err != nil {
		return task, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uint) (models.Task, error) {
	var task models.Task
	result := db.Preload("Attachments").Where("id = ?", id).First(&task)
	return task, result.Error
}

func (s *TaskServiceImpl) GetTasksByOwner(db *gorm.DB, ownerID uint, sortBy, order, page, pageSize string) ([]models.Task, int64, error) {
	var tasks []models.Task
	var total int64

	allowedSort := map[string]bool{"created_at": true, "updated_at": true, "title": true}
	if !allowedSort[sortBy] {
		sortBy = "created_at"
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	p := 1
	ps := 10
	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p = v
	}
	if v, err := strconv.Atoi(pageSize); err == nil && v > 0 && v <= 100 {
		ps = v
	}
	offset := (p - 1) * ps

	db.Model(&models.Task{}).Where("owner_id = ?", ownerID).Count(&total)
	result := db.Where("owner_id = ?", ownerID).
		Order(sortBy + " " + order).
		Offset(offset).Limit(ps).
		Preload("Attachments").
		Find(&tasks)
	return tasks, total, result.Error
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uint, update TaskUpdate) error {
	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.IsCompleted != nil {
		updates["is_completed"] = *update.IsCompleted
	}

	if len(updates) > 0 {
		if err := db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
	}
	return linkAttachments(db, id, update.NewAttachmentIDs)
}

// DeleteTask removes a task with its attachments, disk first. Files must be
// cleaned up while the attachment rows still exist, because the rows hold
// the stored references the disk paths come from; a row cascade cannot reach
// outside the database.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uint) error {
	var attachments []models.Attachment
	if err := db.Where("task_id = ?", id).Find(&attachments).Error; err != nil {
		return fmt.Errorf("list task attachments: %w", err)
	}

	for _, attachment := range attachments {
		if err := removeAttachmentFile(s.paths, attachment); err != nil {
			log.Printf("task %d: %v", id, err)
		}
	}

	if err := db.Delete(&models.Attachment{}, "task_id = ?", id).Error; err != nil {
		return fmt.Errorf("delete task attachments: %w", err)
	}
	return db.Delete(&models.Task{}, "id = ?", id).Error
}

// linkAttachments points the given attachment ids at taskID. Only rows that
// are currently unlinked, or already linked to this task, are touched; other
// ids are skipped without error.
func linkAttachments(db *gorm.DB, taskID uint, attachmentIDs []uint) error {
	if len(attachmentIDs) == 0 {
		return nil
	}
	return db.Model(&models.Attachment{}).
		Where("id IN ? AND (task_id IS NULL OR task_id = ?)", attachmentIDs, taskID).
		Update("task_id", taskID).Error
}
