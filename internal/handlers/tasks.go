package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var taskInput struct {
		Title         string `json:"title" binding:"required"`
		Description   string `json:"description"`
		AttachmentIDs []uint `json:"attachment_ids"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := models.Task{
		OwnerID:     userID,
		Title:       taskInput.Title,
		Description: taskInput.Description,
	}
	created, err := h.taskService.CreateTask(h.db, task, taskInput.AttachmentIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to create task",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sortBy := c.DefaultQuery("sortBy", "created_at")
	order := c.DefaultQuery("order", "desc")
	page := c.DefaultQuery("page", "1")
	pageSize := c.DefaultQuery("pageSize", "10")

	tasks, total, err := h.taskService.GetTasksByOwner(h.db, userID, sortBy, order, page, pageSize)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": total,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := h.ownedTask(c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := h.ownedTask(c, userID)
	if !ok {
		return
	}

	var taskInput struct {
		Title            *string `json:"title"`
		Description      *string `json:"description"`
		IsCompleted      *bool   `json:"is_completed"`
		NewAttachmentIDs []uint  `json:"new_attachment_ids"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if taskInput.Title != nil && *taskInput.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
		return
	}

	update := services.TaskUpdate{
		Title:            taskInput.Title,
		Description:      taskInput.Description,
		IsCompleted:      taskInput.IsCompleted,
		NewAttachmentIDs: taskInput.NewAttachmentIDs,
	}
	if err := h.taskService.UpdateTask(h.db, task.ID, update); err != nil {
		handleTaskError(c, err)
		return
	}

	updated, err := h.taskService.GetTaskByID(h.db, task.ID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, ok := h.ownedTask(c, userID)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(h.db, task.ID); err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// ownedTask loads the task from the :id route parameter and enforces that
// the requester owns it. Writes the error response itself on failure.
func (h *TaskHandler) ownedTask(c *gin.Context, userID uint) (models.Task, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return models.Task{}, false
	}

	task, err := h.taskService.GetTaskByID(h.db, uint(id))
	if err != nil {
		handleTaskError(c, err)
		return models.Task{}, false
	}

	if task.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "Not enough permissions",
		})
		return models.Task{}, false
	}
	return task, true
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "task not found",
		})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to process task request",
		})
	}
}
