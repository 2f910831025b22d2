package handlers

import (
	"fmt"
	"strings"

	"taskboard/internal/config"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// purgeEntityCaches drops the cache keys for the given entity ids. Cascade
// deletes remove child rows at the storage layer without touching Redis,
// so their keys have to be purged explicitly before the parent delete.
func purgeEntityCaches(kind string, ids []int) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf("%s:%d", kind, id))
	}
	config.RedisClient.Del(config.Ctx, keys...)
}

// notFound is the single answer for both a missing resource and a resource
// the actor does not own. Keeping the two indistinguishable means a denied
// request never confirms that the resource exists.
func notFound(c *fiber.Ctx, what string) error {
	return c.Status(404).JSON(fiber.Map{
		"message": what + " not found",
		"success": false,
		"status":  404,
	})
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(403).JSON(fiber.Map{
		"message": "Forbidden",
		"success": false,
		"status":  403,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(400).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  400,
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(500).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  500,
	})
}

// validationError reports every failed field at once as a field -> message
// map, not just the first failure.
func validationError(c *fiber.Ctx, err error) error {
	errors := fiber.Map{}
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrs {
			field := strings.ToLower(fieldErr.Field())
			errors[field] = fieldMessage(field, fieldErr)
		}
	} else {
		errors["request"] = err.Error()
	}
	return c.Status(400).JSON(fiber.Map{
		"message": "Validation error",
		"errors":  errors,
		"success": false,
		"status":  400,
	})
}

func fieldMessage(field string, fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fieldErr.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max":
		if fieldErr.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
