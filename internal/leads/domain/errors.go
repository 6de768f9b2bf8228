package domain

import (
	"errors"
	"fmt"

	"sales_crm_backend/platform/apperr"
)

var (
	ErrNotFound     = errors.New("lead not found")
	ErrUnauthorized = errors.New("not allowed to access lead")
	ErrInactive     = errors.New("lead is inactive")
	ErrStaleState   = errors.New("lead changed concurrently")
)

// NotFound is used by the repository; the service turns it into Unauthorized
// for callers.
func NotFound() error {
	return apperr.Wrap(apperr.KindNotFound, "lead not found", ErrNotFound)
}

func Unauthorized() error {
	return apperr.Wrap(apperr.KindForbidden, "you do not have permission to perform this action", ErrUnauthorized)
}

func Inactive() error {
	return apperr.Wrap(apperr.KindConflict, "lead is inactive", ErrInactive).WithCode("lead_inactive")
}

func Stale() error {
	return apperr.Wrap(apperr.KindConflict, "lead was changed by another request, reload and try again", ErrStaleState)
}

func Validation(format string, args ...any) error {
	return apperr.Validation(fmt.Sprintf(format, args...))
}
