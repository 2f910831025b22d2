package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// User handlers. There is no admin concept: every account can only see and
// change itself.

func GetUser(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	targetID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	if actorID != targetID {
		logger.SecurityLogger.Warn("Forbidden user access", zap.Int("user_id", actorID), zap.Int("target_id", targetID))
		return forbidden(c)
	}

	// Try the Redis cache first
	cacheKey := fmt.Sprintf("user:%d", targetID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var user models.User
		if err = json.Unmarshal([]byte(cached), &user); err == nil {
			return c.JSON(fiber.Map{
				"message": "User found (from cache)",
				"success": true,
				"status":  200,
				"data":    user,
			})
		}
	}

	var user models.User
	err = config.DB.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM users WHERE id = $1",
		targetID).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.SecurityLogger.Warn("User not found", zap.Error(err))
		return notFound(c, "User")
	}

	if userJSON, err := json.Marshal(user); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, userJSON, time.Hour)
	}

	logger.AuditLogger.Info("User fetched successfully", zap.Int("user_id", targetID))
	return c.JSON(fiber.Map{
		"message": "User found",
		"success": true,
		"status":  200,
		"data":    user,
	})
}

func UpdateUser(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	targetID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	if actorID != targetID {
		logger.SecurityLogger.Warn("Forbidden user update", zap.Int("user_id", actorID), zap.Int("target_id", targetID))
		return forbidden(c)
	}

	type UpdateUserRequest struct {
		Username *string `json:"username" validate:"omitempty,excludesall=@?"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Password *string `json:"password" validate:"omitempty,min=6"`
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update user", zap.Error(err))
		return badRequest(c, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in update user", zap.Error(err))
		return validationError(c, err)
	}

	var hashedPassword *string
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
			return serverError(c, "Error hashing password")
		}
		hashedString := string(hashed)
		hashedPassword = &hashedString
	}

	var updatedUser models.User
	err = config.DB.QueryRow(
		`UPDATE users
         SET username = COALESCE(NULLIF($1, ''), username),
             email = COALESCE(NULLIF($2, ''), email),
             password = COALESCE(NULLIF($3, ''), password),
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $4
         RETURNING id, username, email, created_at, updated_at`,
		req.Username, req.Email, hashedPassword, targetID,
	).Scan(&updatedUser.ID, &updatedUser.Username, &updatedUser.Email, &updatedUser.CreatedAt, &updatedUser.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error updating user", zap.Error(err))
		return serverError(c, "Error updating user")
	}

	// Refresh the Redis cache
	cacheKey := fmt.Sprintf("user:%d", targetID)
	config.RedisClient.Del(config.Ctx, cacheKey)
	if userJSON, err := json.Marshal(updatedUser); err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, userJSON, time.Hour)
	}

	logger.AuditLogger.Info("User updated successfully", zap.Int("user_id", targetID))
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"success": true,
		"status":  200,
		"data":    updatedUser,
	})
}

// DeleteUser removes the account. Boards cascade at the storage layer, and
// their tasks cascade with them.
func DeleteUser(c *fiber.Ctx) error {
	actorID := c.Locals("userID").(int)

	targetID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return badRequest(c, "Invalid user ID")
	}

	if actorID != targetID {
		logger.SecurityLogger.Warn("Forbidden user delete", zap.Int("user_id", actorID), zap.Int("target_id", targetID))
		return forbidden(c)
	}

	// Boards and their tasks go with the user through the foreign key
	// cascade; collect their ids first so their cache keys go too.
	boardIDs, err := repository.FindBoardIDsByUser(config.DB, targetID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching user board ids", zap.Error(err))
		return serverError(c, "Error deleting user")
	}
	taskIDs, err := repository.FindTaskIDsByUser(config.DB, targetID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching user task ids", zap.Error(err))
		return serverError(c, "Error deleting user")
	}

	_, err = config.DB.Exec("DELETE FROM users WHERE id = $1", targetID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting user", zap.Error(err))
		return serverError(c, "Error deleting user")
	}

	purgeEntityCaches("board", boardIDs)
	purgeEntityCaches("task", taskIDs)

	cacheKey := fmt.Sprintf("user:%d", targetID)
	config.RedisClient.Del(config.Ctx, cacheKey)

	logger.AuditLogger.Info("User deleted successfully", zap.Int("user_id", targetID))
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
		"success": true,
		"status":  200,
	})
}
