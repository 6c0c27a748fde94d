package services

import (
	"fmt"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/models"

	"gorm.io/gorm"
)

// CachedTaskService is a read-through cache over TaskService. Every cache
// error is treated as a miss; mutations invalidate the affected keys.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
}

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task, attachmentIDs []uint) (models.Task, error) {
	created, err := s.taskService.CreateTask(db, task, attachmentIDs)
	if err != nil {
		return created, err
	}

	// Not cached here: the task row alone misses the attachments that were
	// just linked. The first read populates the cache with the full record.
	s.cache.DeletePattern(fmt.Sprintf("user_tasks:%d:*", created.OwnerID))

	return created, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, id uint) (models.Task, error) {
	cacheKey := fmt.Sprintf("task:%d", id)

	var cachedTask models.Task
	if err := s.cache.Get(cacheKey, &cachedTask); err == nil {
		return cachedTask, nil
	}

	task, err := s.taskService.GetTaskByID(db, id)
	if err != nil {
		return task, err
	}

	s.cache.Set(cacheKey, task, 30*time.Minute)
	return task, nil
}

func (s *CachedTaskService) GetTasksByOwner(db *gorm.DB, ownerID uint, sortBy, order, page, pageSize string) ([]models.Task, int64, error) {
	cacheKey := fmt.Sprintf("user_tasks:%d:%s:%s:%s:%s", ownerID, sortBy, order, page, pageSize)

	var cachedResult struct {
		Tasks []models.Task `json:"tasks"`
		Total int64         `json:"total"`
	}
	if err := s.cache.Get(cacheKey, &cachedResult); err == nil {
		return cachedResult.Tasks, cachedResult.Total, nil
	}

	tasks, total, err := s.taskService.GetTasksByOwner(db, ownerID, sortBy, order, page, pageSize)
	if err != nil {
		return tasks, total, err
	}

	result := struct {
		Tasks []models.Task `json:"tasks"`
		Total int64         `json:"total"`
	}{
		Tasks: tasks,
		Total: total,
	}
	s.cache.Set(cacheKey, result, 5*time.Minute)

	return tasks, total, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, id uint, update TaskUpdate) error {
	if err := s.taskService.UpdateTask(db, id, update); err != nil {
		return err
	}
	s.invalidate(db, id)
	return nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, id uint) error {
	task, getErr := s.taskService.GetTaskByID(db, id)

	if err := s.taskService.DeleteTask(db, id); err != nil {
		return err
	}

	s.cache.Delete(fmt.Sprintf("task:%d", id))
	if getErr == nil {
		s.cache.DeletePattern(fmt.Sprintf("user_tasks:%d:*", task.OwnerID))
	}
	return nil
}

func (s *CachedTaskService) invalidate(db *gorm.DB, id uint) {
	s.cache.Delete(fmt.Sprintf("task:%d", id))

	if task, err := s.taskService.GetTaskByID(db, id); err == nil {
		s.cache.DeletePattern(fmt.Sprintf("user_tasks:%d:*", task.OwnerID))
	}
}
