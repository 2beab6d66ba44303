package middleware

import (
	"team-taskboard/logger"
	"team-taskboard/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserContextMiddleware extracts the caller identity set by the Gateway
// (X-User-ID, X-User-Role, X-Team-ID) and attaches it to the request
// context. Identity issuance and verification happen upstream; by the time
// a request reaches this service the headers are trusted.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "UNAUTHENTICATED",
					"message": "missing X-User-ID — request must come through gateway with auth context",
				},
			})
		}

		role := models.Role(c.Get("X-User-Role"))
		if !role.Valid() {
			// Least privilege when the gateway sends something unexpected.
			logger.Security.Warn("unknown role header, defaulting to member",
				zap.String("user_id", userID),
				zap.String("role", string(role)),
			)
			role = models.RoleMember
		}

		var teamID *string
		if v := c.Get("X-Team-ID"); v != "" {
			teamID = &v
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		c.Locals("team_id", teamID)

		return c.Next()
	}
}
