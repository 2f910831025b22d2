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

// Board handlers. Answers follow the page-payload shape: a "page"
// identifier plus the data the page needs, or a "redirect" route name after
// a mutation. A board the actor does not own answers exactly like a board
// that does not exist.

// ListBoards is the board index page under a user path.
func ListBoards(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	pathUserID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	// Listing boards "as" another user is never allowed, owned or not.
	if !policy.CanListBoards(actorID, pathUserID) {
		logger.SecurityLogger.Warn("Forbidden board listing", zap.Int("user_id", actorID), zap.Int("path_user_id", pathUserID))
		return forbidden(c)
	}

	boards, err := repository.FindBoardsByUser(config.DB, pathUserID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching boards", zap.Error(err))
		return serverError(c, "Error fetching boards")
	}

	logger.AuditLogger.Info("Boards fetched successfully", zap.Int("user_id", pathUserID))
	return c.JSON(fiber.Map{
		"message": "Boards fetched successfully",
		"success": true,
		"status":  200,
		"page":    "board/index",
		"data": fiber.Map{
			"boards": boards,
		},
	})
}

// NewBoard is the create form page for a board under a user path.
func NewBoard(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	pathUserID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	if !policy.CanListBoards(actorID, pathUserID) {
		logger.SecurityLogger.Warn("Forbidden board create page", zap.Int("user_id", actorID), zap.Int("path_user_id", pathUserID))
		return forbidden(c)
	}

	return c.JSON(fiber.Map{
		"message": "Board form ready",
		"success": true,
		"status":  200,
		"page":    "board/create",
		"data": fiber.Map{
			"user_id": pathUserID,
		},
	})
}

// CreateBoard stores a new board under the path user, who becomes its owner.
func CreateBoard(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	pathUserID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	type BoardRequest struct {
		Name string `json:"name" validate:"required,max=255"`
	}

	var req BoardRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create board", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create board", zap.Error(err))
		return validationError(c, err)
	}

	if !policy.CanListBoards(actorID, pathUserID) {
		logger.SecurityLogger.Warn("Forbidden board creation", zap.Int("user_id", actorID), zap.Int("path_user_id", pathUserID))
		return forbidden(c)
	}

	board, err := repository.InsertBoard(config.DB, pathUserID, req.Name)
	if err != nil {
		logger.ErrorLogger.Error("Error creating board", zap.Error(err))
		return serverError(c, "Error creating board")
	}

	logger.AuditLogger.Info("Board created successfully", zap.Int("board_id", board.ID))
	return c.Status(201).JSON(fiber.Map{
		"message":  "Board created successfully",
		"success":  true,
		"status":   201,
		"redirect": "board.show",
		"data": fiber.Map{
			"board": board,
		},
	})
}

// ShowBoard is the board page: the board plus its ten newest tasks.
func ShowBoard(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid board ID", zap.Error(err))
		return badRequest(c, "Invalid board ID")
	}

	board, err := fetchBoard(boardID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching board", zap.Error(err))
			return serverError(c, "Error fetching board")
		}
		return notFound(c, "Board")
	}
	if !policy.CanAccessBoard(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden board access", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	tasks, err := repository.FindRecentTasks(config.DB, boardID, 10)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching board tasks", zap.Error(err))
		return serverError(c, "Error fetching board tasks")
	}

	logger.AuditLogger.Info("Board fetched successfully", zap.Int("board_id", boardID))
	return c.JSON(fiber.Map{
		"message": "Board fetched successfully",
		"success": true,
		"status":  200,
		"page":    "board/show",
		"data": fiber.Map{
			"board": board,
			"tasks": tasks,
		},
	})
}

// EditBoard is the edit form page for a board.
func EditBoard(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid board ID", zap.Error(err))
		return badRequest(c, "Invalid board ID")
	}

	board, err := fetchBoard(boardID)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.ErrorLogger.Error("Error fetching board", zap.Error(err))
			return serverError(c, "Error fetching board")
		}
		return notFound(c, "Board")
	}
	if !policy.CanAccessBoard(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden board access", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	return c.JSON(fiber.Map{
		"message": "Board fetched successfully",
		"success": true,
		"status":  200,
		"page":    "board/edit",
		"data": fiber.Map{
			"board": board,
		},
	})
}

// UpdateBoard renames a board. Name is the only mutable field; the owner is
// fixed at creation.
func UpdateBoard(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	boardID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid board ID", zap.Error(err))
		return badRequest(c, "Invalid board ID")
	}

	type UpdateBoardRequest struct {
		Name *string `json:"name" validate:"omitempty,max=255"`
	}

	var req UpdateBoardRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update board", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in update board", zap.Error(err))
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
	if !policy.CanAccessBoard(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden board update", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	updatedBoard, err := repository.UpdateBoardName(config.DB, boardID, req.Name)
	if err != nil {
		logger.ErrorLogger.Error("Error updating board", zap.Error(err))
		return serverError(c, "Error updating board")
	}

	refreshBoardCache(updatedBoard)

	logger.AuditLogger.Info("Board updated successfully", zap.Int("board_id", boardID))
	return c.JSON(fiber.Map{
		"message":  "Board updated successfully",
		"success":  true,
		"status":   200,
		"redirect": "board.show",
		"data": fiber.Map{
			"board": updatedBoard,
		},
	})
}

// DeleteBoard removes the board and, through the foreign key cascade, every
// task on it.
func DeleteBoard(c *fiber.Ctx) error {
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
	if !policy.CanAccessBoard(actorID, board) {
		logger.SecurityLogger.Warn("Forbidden board delete", zap.Int("user_id", actorID), zap.Int("board_id", boardID))
		return notFound(c, "Board")
	}

	// The foreign key cascade removes the task rows without touching
	// Redis, so collect their ids first and purge the keys with the board's.
	taskIDs, err := repository.FindTaskIDsByBoard(config.DB, boardID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching board task ids", zap.Error(err))
		return serverError(c, "Error deleting board")
	}

	if err := repository.DeleteBoard(config.DB, boardID); err != nil {
		logger.ErrorLogger.Error("Error deleting board", zap.Error(err))
		return serverError(c, "Error deleting board")
	}

	purgeEntityCaches("task", taskIDs)
	config.RedisClient.Del(config.Ctx, fmt.Sprintf("board:%d", boardID))

	logger.AuditLogger.Info("Board deleted successfully", zap.Int("board_id", boardID))
	return c.JSON(fiber.Map{
		"message":  "Board deleted successfully",
		"success":  true,
		"status":   200,
		"redirect": "user.board.index",
	})
}

// fetchBoard tries the Redis cache first and falls back to the database.
// Ownership is always re-checked by the caller against what is returned.
func fetchBoard(boardID int) (models.Board, error) {
	cacheKey := fmt.Sprintf("board:%d", boardID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var board models.Board
		if err = json.Unmarshal([]byte(cached), &board); err == nil {
			return board, nil
		}
	}

	board, err := repository.GetBoard(config.DB, boardID)
	if err != nil {
		return models.Board{}, err
	}

	if boardJSON, err := json.Marshal(board); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, boardJSON, time.Hour)
	}
	return board, nil
}

func refreshBoardCache(board models.Board) {
	cacheKey := fmt.Sprintf("board:%d", board.ID)
	config.RedisClient.Del(config.Ctx, cacheKey)
	if boardJSON, err := json.Marshal(board); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, boardJSON, time.Hour)
	}
}
