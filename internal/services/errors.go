package services

import (
	"fmt"

	"github.com/abrezinsky/awardpicks/internal/errors"
	"github.com/abrezinsky/awardpicks/internal/repository"
)

// Service errors
var (
	ErrInvalidTimerMinutes = &ServiceError{Message: "minutes must be between 1 and 60"}
	ErrNoTablesSpecified   = &ServiceError{Message: "no tables specified"}
	ErrInvalidSeedType     = &ServiceError{Message: "invalid seed type"}
	ErrVotingClosed        = &ServiceError{Message: "voting is currently closed"}
	ErrCategoryLocked      = &ServiceError{Message: "category already has a declared winner"}
	ErrDuplicateNominee    = &ServiceError{Message: "the same nominee cannot fill more than one place"}
	ErrOwnerCannotLeave    = &ServiceError{Message: "the group owner cannot leave the group"}
	ErrNoFeedURL           = &ServiceError{Message: "no ballot feed URL configured"}
	ErrRecomputeRunning    = &ServiceError{Message: "a recompute is already running"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}

// notFoundOr converts repository.ErrNotFound into a kind-classified not-found
// error and leaves other errors untouched
func notFoundOr(err error, format string, args ...interface{}) error {
	if err == repository.ErrNotFound {
		return errors.NotFoundf(format, args...)
	}
	return err
}
