package handlers

import (
	"team-taskboard/models"
	"team-taskboard/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// actorFromCtx rebuilds the caller identity set by UserContextMiddleware.
func actorFromCtx(c *fiber.Ctx) services.Identity {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("user_role").(models.Role)
	teamID, _ := c.Locals("team_id").(*string)
	return services.Identity{UserID: userID, Role: role, TeamID: teamID}
}
