// handlers/board.go
package handlers

import (
	"team-taskboard/middleware"
	"team-taskboard/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBoardRoutes(app *fiber.App, boardService *services.BoardService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/boards", func(c *fiber.Ctx) error {
		boards, err := boardService.ListBoards(actorFromCtx(c))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(boards)
	})

	secured.Get("/boards/:id", func(c *fiber.Ctx) error {
		board, err := boardService.GetBoard(actorFromCtx(c), c.Params("id"))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(board)
	})

	secured.Post("/boards", func(c *fiber.Ctx) error {
		var req struct {
			Name        string `json:"name" validate:"required"`
			Description string `json:"description"`
			TeamID      string `json:"team_id" validate:"required,uuid"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		board, err := boardService.CreateBoard(actorFromCtx(c), req.Name, req.Description, req.TeamID)
		if err != nil {
			return Fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(board)
	})

	secured.Patch("/boards/:id", func(c *fiber.Ctx) error {
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}

		board, err := boardService.UpdateBoard(actorFromCtx(c), c.Params("id"), services.UpdateBoardInput{
			Name:        req.Name,
			Description: req.Description,
		})
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(board)
	})

	secured.Delete("/boards/:id", func(c *fiber.Ctx) error {
		if err := boardService.DeleteBoard(actorFromCtx(c), c.Params("id")); err != nil {
			return Fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	secured.Get("/boards/:id/lists", func(c *fiber.Ctx) error {
		lists, err := boardService.ListLists(actorFromCtx(c), c.Params("id"))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(lists)
	})

	secured.Post("/boards/:id/lists", func(c *fiber.Ctx) error {
		var req struct {
			Name     string `json:"name" validate:"required"`
			Position int    `json:"position"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		list, err := boardService.CreateList(actorFromCtx(c), c.Params("id"), req.Name, req.Position)
		if err != nil {
			return Fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(list)
	})

	secured.Patch("/lists/:id", func(c *fiber.Ctx) error {
		var req struct {
			Name     *string `json:"name"`
			Position *int    `json:"position"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}

		list, err := boardService.UpdateList(actorFromCtx(c), c.Params("id"), services.UpdateListInput{
			Name:     req.Name,
			Position: req.Position,
		})
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Delete("/lists/:id", func(c *fiber.Ctx) error {
		if err := boardService.DeleteList(actorFromCtx(c), c.Params("id")); err != nil {
			return Fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
