package service

import (
	"errors"
	"fmt"

	"github.com/induskill/marketplace-api/internal/database"
	"gorm.io/gorm"
)

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when a user doesn't have permission for an action
	ErrForbidden = errors.New("permission denied")

	// ErrPayloadTooLarge is returned when an upload exceeds the configured limit
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Entity errors wrap the common errors so handlers can map either
var (
	ErrCourseNotFound     = fmt.Errorf("course not found: %w", ErrNotFound)
	ErrCourseNotPublished = fmt.Errorf("course is not open for enrollment: %w", ErrInvalidInput)
	ErrPartnerNotFound    = fmt.Errorf("partner not found: %w", ErrNotFound)
	ErrPartnerExists      = fmt.Errorf("a partner with this name already exists: %w", ErrConflict)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment not found: %w", ErrNotFound)
	ErrAlreadyEnrolled    = fmt.Errorf("already enrolled in this course: %w", ErrConflict)
	ErrMessageNotFound    = fmt.Errorf("contact message not found: %w", ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("user profile not found: %w", ErrNotFound)
	ErrRoleNotAssignable  = fmt.Errorf("role cannot be self-assigned: %w", ErrForbidden)
	ErrUnsupportedImage   = fmt.Errorf("image must be jpeg, png, webp or gif: %w", ErrInvalidInput)
)

// MissingTableError is returned when a query hits a table that has not been migrated
type MissingTableError struct {
	Table string
	Err   error
}

func (e *MissingTableError) Error() string {
	if e.Table == "" {
		return "database table is missing; run migrations"
	}
	return fmt.Sprintf("table %s is missing; run migrations", e.Table)
}

func (e *MissingTableError) Unwrap() error {
	return e.Err
}

// translateError maps repository errors onto service errors. notFound is used for
// gorm.ErrRecordNotFound.
func translateError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case database.IsUndefinedTable(err):
		return &MissingTableError{Table: database.MissingTableName(err), Err: err}
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: referenced record does not exist", ErrInvalidInput)
	}
	return err
}
