// handlers/team.go
package handlers

import (
	"team-taskboard/middleware"
	"team-taskboard/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/teams", func(c *fiber.Ctx) error {
		teams, err := teamService.ListTeams(actorFromCtx(c))
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(teams)
	})

	secured.Post("/teams", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name" validate:"required"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		team, err := teamService.CreateTeam(actorFromCtx(c), req.Name)
		if err != nil {
			return Fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	})

	secured.Delete("/teams/:id", func(c *fiber.Ctx) error {
		if err := teamService.DeleteTeam(actorFromCtx(c), c.Params("id")); err != nil {
			return Fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
