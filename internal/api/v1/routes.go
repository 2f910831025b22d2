package v1

import (
	"taskboard/internal/api/v1/handlers"
	"taskboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Auth
	api.Post("/login", handlers.Login)
	api.Post("/register", handlers.Register)

	// User + nested boards
	userRoutes := api.Group("/users", middleware.UseToken)
	userRoutes.Get("/:id", handlers.GetUser)
	userRoutes.Put("/:id", handlers.UpdateUser)
	userRoutes.Delete("/:id", handlers.DeleteUser)
	userRoutes.Get("/:id/boards", handlers.ListBoards)
	userRoutes.Get("/:id/boards/create", handlers.NewBoard)
	userRoutes.Post("/:id/boards", handlers.CreateBoard)

	// Board + nested tasks
	boardRoutes := api.Group("/boards", middleware.UseToken)
	boardRoutes.Get("/:id", handlers.ShowBoard)
	boardRoutes.Get("/:id/edit", handlers.EditBoard)
	boardRoutes.Put("/:id", handlers.UpdateBoard)
	boardRoutes.Patch("/:id", handlers.UpdateBoard)
	boardRoutes.Delete("/:id", handlers.DeleteBoard)
	boardRoutes.Get("/:id/tasks", handlers.ListTasks)
	boardRoutes.Get("/:id/tasks/create", handlers.NewTask)
	boardRoutes.Post("/:id/tasks", handlers.CreateTask)

	// Task
	taskRoutes := api.Group("/tasks", middleware.UseToken)
	taskRoutes.Get("/:id/edit", handlers.EditTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Patch("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)
}
