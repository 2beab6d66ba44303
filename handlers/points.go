// handlers/points.go
package handlers

import (
	"strconv"

	"team-taskboard/middleware"
	"team-taskboard/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPointsRoutes(app *fiber.App, ledger *services.LedgerService, leaderboard *services.LeaderboardService, teamService *services.TeamService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// Admin grants points outside the task flow.
	secured.Post("/users/:id/points", func(c *fiber.Ctx) error {
		var req struct {
			PointsEarned int64   `json:"points_earned" validate:"required"`
			Notes        *string `json:"notes" validate:"omitempty,max=500"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		entry, err := ledger.AwardManual(actorFromCtx(c), c.Params("id"), req.PointsEarned, req.Notes)
		if err != nil {
			return Fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	secured.Post("/points/redeem", func(c *fiber.Ctx) error {
		var req struct {
			Points int64   `json:"points" validate:"required"`
			Notes  *string `json:"notes" validate:"omitempty,max=500"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiBadRequest})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrResponse{Error: apiValidation})
		}

		entry, err := ledger.Redeem(actorFromCtx(c), req.Points, req.Notes)
		if err != nil {
			return Fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	// The caller's own ledger, newest first. Restartable pagination: every
	// call re-queries, no cursor is kept.
	secured.Get("/points", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		entries, err := ledger.GetPointsHistory(actor, page, size)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(fiber.Map{
			"entries": entries,
			"page":    page,
			"size":    size,
		})
	})

	secured.Get("/points/total", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		total, err := ledger.GetUserPoints(actor, actor.UserID)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(fiber.Map{
			"user_id":      actor.UserID,
			"total_points": total,
		})
	})

	secured.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit := services.ClampLimit(c.Query("limit", ""))
		entries, err := leaderboard.GetLeaderboard(c.Context(), actorFromCtx(c), limit)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(entries)
	})

	secured.Get("/users/me", func(c *fiber.Ctx) error {
		actor := actorFromCtx(c)
		user, err := teamService.GetUser(actor, actor.UserID)
		if err != nil {
			return Fail(c, err)
		}
		return c.JSON(user)
	})
}
