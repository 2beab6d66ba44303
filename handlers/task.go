// handlers/task.go
package handlers

import (
	"time"

	"team-taskboard/middleware"
	"team-taskboard/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, taskService *services.TaskService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/lists/:id/tasks", func(c *fiber.Ctx) error {
		tasks, err := taskService.ListTasks(actorFromCtx(c), c.Params("id"))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(tasks)
	})

	secured.Get("/tasks/:id", func(c *fiber.Ctx) error {
		task, err := taskService.GetTask(actorFromCtx(c), c.Params("id"))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(task)
	})

	secured.Post("/tasks", func(c *fiber.Ctx) error {
		var req struct {
			ListID      string     `json:"list_id" validate:"required,uuid"`
			Title       string     `json:"title" validate:"required"`
			Description string     `json:"description"`
			StoryPoints *int       `json:"story_points"`
			Position    int        `json:"position"`
			AssignedTo  *string    `json:"assigned_to" validate:"omitempty,uuid"`
			DueDate     *time.Time `json:"due_date"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		task, err := taskService.CreateTask(actorFromCtx(c), services.CreateTaskInput{
			ListID:      req.ListID,
			Title:       req.Title,
			Description: req.Description,
			StoryPoints: req.StoryPoints,
			Position:    req.Position,
			AssignedTo:  req.AssignedTo,
			DueDate:     req.DueDate,
		})
		if err != nil {
			return Fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	})

	secured.Patch("/tasks/:id", func(c *fiber.Ctx) error {
		var req struct {
			Title       *string    `json:"title"`
			Description *string    `json:"description"`
			StoryPoints *int       `json:"story_points"`
			DueDate     *time.Time `json:"due_date"`
			Position    *int       `json:"position"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}

		task, err := taskService.UpdateTask(actorFromCtx(c), c.Params("id"), services.UpdateTaskInput{
			Title:       req.Title,
			Description: req.Description,
			StoryPoints: req.StoryPoints,
			DueDate:     req.DueDate,
			Position:    req.Position,
		})
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(task)
	})

	secured.Patch("/tasks/:id/move", func(c *fiber.Ctx) error {
		var req struct {
			ListID   string `json:"list_id" validate:"required,uuid"`
			Position int    `json:"position"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		task, err := taskService.MoveTask(actorFromCtx(c), c.Params("id"), req.ListID, req.Position)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(task)
	})

	secured.Patch("/tasks/:id/assign", func(c *fiber.Ctx) error {
		var req struct {
			AssignedTo *string `json:"assigned_to" validate:"omitempty,uuid"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		task, err := taskService.AssignTask(actorFromCtx(c), c.Params("id"), req.AssignedTo)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(task)
	})

	secured.Patch("/tasks/:id/complete", func(c *fiber.Ctx) error {
		task, err := taskService.CompleteTask(actorFromCtx(c), c.Params("id"))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(task)
	})

	secured.Delete("/tasks/:id", func(c *fiber.Ctx) error {
		if err := taskService.DeleteTask(actorFromCtx(c), c.Params("id")); err != nil {
			return Fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Post("/tasks/:id/attachments", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}

		task, err := taskService.AttachFile(actorFromCtx(c), c.Params("id"), fileHeader)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(task)
	})
}
