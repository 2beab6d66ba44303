package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors for the whole service layer. Handlers translate these to
// HTTP statuses in exactly one place; everything below the boundary wraps
// them with fmt.Errorf("...: %w", ...) so errors.Is keeps working.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream store failure")

	ErrInsufficientRole = fmt.Errorf("%w: insufficient role", ErrForbidden)
	ErrWrongTeamScope   = fmt.Errorf("%w: wrong team scope", ErrForbidden)

	ErrAlreadyCompleted   = fmt.Errorf("%w: task already completed", ErrConflict)
	ErrAlreadyAwarded     = fmt.Errorf("%w: points already awarded for task", ErrConflict)
	ErrInsufficientPoints = fmt.Errorf("%w: insufficient points balance", ErrConflict)

	ErrInvalidPoints = fmt.Errorf("%w: invalid points value", ErrValidation)
)

// storeErr classifies a GORM error: missing rows become ErrNotFound,
// everything else is an upstream failure.
func storeErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// isDuplicate reports whether err is a unique-constraint violation. GORM's
// error translation covers Postgres; the string checks cover drivers that
// don't translate (sqlite in tests).
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
