package handlers

import (
	"errors"
	"net/http"

	"team-taskboard/logger"
	"team-taskboard/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrResponse struct {
	Error APIError `json:"error"`
}

var (
	apiBadRequest = APIError{
		Code:    "INVALID_REQUEST",
		Message: "invalid request body",
	}
	apiValidation = APIError{
		Code:    "VALIDATION_FAILED",
		Message: "request failed validation",
	}
	apiInvalidPoints = APIError{
		Code:    "INVALID_POINTS",
		Message: "points value must be a positive number",
	}
	apiUnauthenticated = APIError{
		Code:    "UNAUTHENTICATED",
		Message: "no valid caller identity",
	}
	apiInsufficientRole = APIError{
		Code:    "INSUFFICIENT_ROLE",
		Message: "role does not permit this action",
	}
	apiWrongTeamScope = APIError{
		Code:    "WRONG_TEAM_SCOPE",
		Message: "resource belongs to another team",
	}
	apiForbidden = APIError{
		Code:    "FORBIDDEN",
		Message: "not permitted for this action or resource",
	}
	apiNotFound = APIError{
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}
	apiAlreadyCompleted = APIError{
		Code:    "ALREADY_COMPLETED",
		Message: "task is already completed",
	}
	apiAlreadyAwarded = APIError{
		Code:    "ALREADY_AWARDED",
		Message: "points were already awarded for this task",
	}
	apiInsufficientPoints = APIError{
		Code:    "INSUFFICIENT_POINTS",
		Message: "points balance does not cover this redemption",
	}
	apiConflict = APIError{
		Code:    "CONFLICT",
		Message: "request conflicts with current state",
	}
	apiUpstream = APIError{
		Code:    "UPSTREAM_FAILURE",
		Message: "an upstream dependency failed",
	}
	apiInternal = APIError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "internal server error",
	}
)

// MapError translates a service error to a status and API error exactly
// once, at the boundary. The bool mirrors whether the error was
// recognized; unrecognized errors become 500 with details hidden.
func MapError(err error) (int, APIError, bool) {
	switch {
	case errors.Is(err, services.ErrAlreadyCompleted):
		return http.StatusConflict, apiAlreadyCompleted, true
	case errors.Is(err, services.ErrAlreadyAwarded):
		return http.StatusConflict, apiAlreadyAwarded, true
	case errors.Is(err, services.ErrInsufficientPoints):
		return http.StatusConflict, apiInsufficientPoints, true
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, apiConflict, true

	case errors.Is(err, services.ErrInvalidPoints):
		return http.StatusBadRequest, apiInvalidPoints, true
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, apiValidation, true

	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, apiUnauthenticated, true

	case errors.Is(err, services.ErrInsufficientRole):
		return http.StatusForbidden, apiInsufficientRole, true
	case errors.Is(err, services.ErrWrongTeamScope):
		return http.StatusForbidden, apiWrongTeamScope, true
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, apiForbidden, true

	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, apiNotFound, true

	case errors.Is(err, services.ErrUpstream):
		return http.StatusInternalServerError, apiUpstream, true

	default:
		return http.StatusInternalServerError, apiInternal, false
	}
}

// Fail writes the mapped error response. Unrecognized errors are logged
// with their cause but never leak it to the caller.
func Fail(c *fiber.Ctx, err error) error {
	status, apiErr, known := MapError(err)
	if !known {
		logger.Error.Error("unhandled error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(ErrResponse{Error: apiErr})
}
