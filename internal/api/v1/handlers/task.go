package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/internal/policy"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Task handlers. Tasks are owned through their board, so every check walks
// to the board's user. A task on someone else's board answers exactly like
// a task that does not exist, and so does a soft-deleted task.

// taskCacheEntry is what gets cached per task: the task itself plus the
// owning user of its board, so a cache hit can still be ownership-checked.
type taskCacheEntry struct {
	Task    models.Task `json:"task"`
	OwnerID int         `json:"owner_id"`
}

// ListTasks is the task index page for a board, ordered by status then
// priority. Priority 0 is the most urgent, so ascending order is urgency
// order.
func ListTasks(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid board ID", zap.Error(err))
		return badRequest(c, "Invalid board ID")
	}

	board, err := repository.GetBoard(config.DB, boardID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching board", zap.Error(err))
			return serverError(c, "Error fetching board")
		}
		return notFound(c, "Board")
	}
	if !policy.CanListTasks(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden task listing", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	tasks, err := repository.FindTasksByBoard(config.DB, boardID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return serverError(c, "Error fetching tasks")
	}

	logger.AuditLogger.Info("Tasks fetched successfully", zap.Int("board_id", boardID))
	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  200,
		"page":    "task/index",
		"data": fiber.Map{
			"board": board,
			"tasks": tasks,
		},
	})
}

// NewTask is the create form page for a task on a board, carrying the
// priority dropdown options. Status is not offered here: a new task always
// starts at Todo.
func NewTask(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid board ID", zap.Error(err))
		return badRequest(c, "Invalid board ID")
	}

	board, err := repository.GetBoard(config.DB, boardID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching board", zap.Error(err))
			return serverError(c, "Error fetching board")
		}
		return notFound(c, "Board")
	}
	if !policy.CanListTasks(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden task create page", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	return c.JSON(fiber.Map{
		"message": "Task form ready",
		"success": true,
		"status":  200,
		"page":    "task/create",
		"data": fiber.Map{
			"board":      board,
			"priorities": models.PriorityOptions(),
		},
	})
}

// CreateTask stores a new task on the path board. Status always starts at
// Todo; priority defaults to Medium when not supplied. The board reference
// comes from the path, so a board id in the payload is ignored.
func CreateTask(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid board ID", zap.Error(err))
		return badRequest(c, "Invalid board ID")
	}

	type TaskRequest struct {
		Title    string `json:"title" validate:"required,min=3,max=255"`
		Priority *int   `json:"priority" validate:"omitempty,min=0,max=4"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return validationError(c, err)
	}

	board, err := repository.GetBoard(config.DB, boardID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching board", zap.Error(err))
			return serverError(c, "Error fetching board")
		}
		return notFound(c, "Board")
	}
	if !policy.CanListTasks(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden task creation", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	priority := models.PriorityMedium
	if req.Priority != nil {
		priority = models.TaskPriority(*req.Priority)
	}

	task, err := repository.InsertTask(config.DB, boardID, req.Title, priority)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return serverError(c, "Error creating task")
	}

	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", task.ID), zap.Int("board_id", boardID))
	return c.Status(201).JSON(fiber.Map{
		"message":  "Task created successfully",
		"success":  true,
		"status":   201,
		"redirect": "board.task.index",
		"data": fiber.Map{
			"task": task,
		},
	})
}

// EditTask is the edit form page for a task, including the dropdown options
// for status and priority.
func EditTask(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	task, ownerID, err := fetchTask(taskID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
			return serverError(c, "Error fetching task")
		}
		return notFound(c, "Task")
	}
	if !policy.CanAccessTask(actorID, ownerID) {
		logger.SecurityLogger.Warn("Forbidden task access", zap.Int("user_id", actorID), zap.Int("task_id", taskID))
		return notFound(c, "Task")
	}

	return c.JSON(fiber.Map{
		"message": "Task fetched successfully",
		"success": true,
		"status":  200,
		"page":    "task/edit",
		"data": fiber.Map{
			"task":       task,
			"statuses":   models.StatusOptions(),
			"priorities": models.PriorityOptions(),
		},
	})
}

// UpdateTask applies a partial update: only the supplied fields change, the
// rest keep their values. The owning board can never be changed.
func UpdateTask(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	type UpdateTaskRequest struct {
		Title    *string `json:"title" validate:"omitempty,min=3,max=255"`
		Status   *int    `json:"status" validate:"omitempty,min=0,max=7"`
		Priority *int    `json:"priority" validate:"omitempty,min=0,max=4"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in update task", zap.Error(err))
		return validationError(c, err)
	}

	_, ownerID, err := repository.GetTaskWithOwner(config.DB, taskID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
			return serverError(c, "Error fetching task")
		}
		return notFound(c, "Task")
	}
	if !policy.CanAccessTask(actorID, ownerID) {
		logger.SecurityLogger.Warn("Forbidden task update", zap.Int("user_id", actorID), zap.Int("task_id", taskID))
		return notFound(c, "Task")
	}

	var status *models.TaskStatus
	if req.Status != nil {
		s := models.TaskStatus(*req.Status)
		status = &s
	}
	var priority *models.TaskPriority
	if req.Priority != nil {
		p := models.TaskPriority(*req.Priority)
		priority = &p
	}

	updatedTask, err := repository.UpdateTask(config.DB, taskID, req.Title, status, priority)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return serverError(c, "Error updating task")
	}

	refreshTaskCache(updatedTask, ownerID)

	logger.AuditLogger.Info("Task updated successfully", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message":  "Task updated successfully",
		"success":  true,
		"status":   200,
		"redirect": "board.task.index",
		"data": fiber.Map{
			"task": updatedTask,
		},
	})
}

// DeleteTask soft-deletes the task: the row keeps its data and gets a
// deletion timestamp, and every normal read skips it from then on.
func DeleteTask(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return badRequest(c, "Invalid task ID")
	}

	_, ownerID, err := repository.GetTaskWithOwner(config.DB, taskID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
			return serverError(c, "Error fetching task")
		}
		return notFound(c, "Task")
	}
	if !policy.CanAccessTask(actorID, ownerID) {
		logger.SecurityLogger.Warn("Forbidden task delete", zap.Int("user_id", actorID), zap.Int("task_id", taskID))
		return notFound(c, "Task")
	}

	if err := repository.SoftDeleteTask(config.DB, taskID); err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return serverError(c, "Error deleting task")
	}

	config.RedisClient.Del(config.Ctx, fmt.Sprintf("task:%d", taskID))

	logger.AuditLogger.Info("Task deleted successfully", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message":  "Task deleted successfully",
		"success":  true,
		"status":   200,
		"redirect": "board.task.index",
	})
}

// fetchTask tries the Redis cache first and falls back to the database. The
// owner id is cached alongside the task so the caller can re-check
// ownership either way.
func fetchTask(taskID int) (models.Task, int, error) {
	cacheKey := fmt.Sprintf("task:%d", taskID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var entry taskCacheEntry
		if err = json.Unmarshal([]byte(cached), &entry); err == nil {
			return entry.Task, entry.OwnerID, nil
		}
	}

	task, ownerID, err := repository.GetTaskWithOwner(config.DB, taskID)
	if err != nil {
		return models.Task{}, 0, err
	}

	if entryJSON, err := json.Marshal(taskCacheEntry{Task: task, OwnerID: ownerID}); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, entryJSON, time.Hour)
	}
	return task, ownerID, nil
}

func refreshTaskCache(task models.Task, ownerID int) {
	cacheKey := fmt.Sprintf("task:%d", task.ID)
	config.RedisClient.Del(config.Ctx, cacheKey)
	if entryJSON, err := json.Marshal(taskCacheEntry{Task: task, OwnerID: ownerID}); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, entryJSON, time.Hour)
	}
}
