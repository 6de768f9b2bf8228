package domain

import (
	"errors"
	"fmt"

	"sales_crm_backend/platform/apperr"
)

// Sentinels for the follow-up engine. Callers match them with errors.Is; the
// constructors below wrap them into apperr kinds for the HTTP layer.
var (
	ErrInvalidStage     = errors.New("invalid follow-up stage")
	ErrStageInUse       = errors.New("follow-up stage in use")
	ErrAlreadyCompleted = errors.New("follow-up already completed")
	ErrUnauthorized     = errors.New("not allowed to access follow-up")
	ErrNotFound         = errors.New("follow-up not found")
	ErrStaleState       = errors.New("follow-up changed concurrently")
)

const (
	CodeInvalidStage     = "invalid_stage"
	CodeStageInUse       = "stage_in_use"
	CodeAlreadyCompleted = "already_completed"
	CodeScheduledExists  = "scheduled_follow_up_exists"
)

// InvalidStage reports an unknown (or inactive) stage key.
func InvalidStage(key string) error {
	return apperr.Wrap(apperr.KindNotFound, fmt.Sprintf("follow-up stage %q not found", key), ErrInvalidStage).
		WithCode(CodeInvalidStage)
}

// StageInUse reports a delete of a stage that still has records.
func StageInUse(key string) error {
	return apperr.Wrap(apperr.KindConflict, fmt.Sprintf("follow-up stage %q is used by existing follow-ups", key), ErrStageInUse).
		WithCode(CodeStageInUse)
}

// AlreadyCompleted is returned to the loser of a completion race and to
// duplicate submissions.
func AlreadyCompleted() error {
	return apperr.Wrap(apperr.KindConflict, "follow-up already handled", ErrAlreadyCompleted).
		WithCode(CodeAlreadyCompleted)
}

// Unauthorized is deliberately the same for records that do not exist and
// records the caller may not touch.
func Unauthorized() error {
	return apperr.Wrap(apperr.KindForbidden, "you do not have permission to perform this action", ErrUnauthorized)
}

// Stale reports a guarded update that lost against a concurrent change other
// than completion (for example an attempt slot flipped by another request).
func Stale() error {
	return apperr.Wrap(apperr.KindConflict, "follow-up was changed by another request, reload and try again", ErrStaleState)
}

// Validation wraps a caller input error.
func Validation(format string, args ...any) error {
	return apperr.Validation(fmt.Sprintf(format, args...))
}

// NoActiveStage is returned when the catalog has nothing to start a cadence with.
func NoActiveStage() error {
	return apperr.Wrap(apperr.KindNotFound, "no active follow-up stage configured", ErrInvalidStage).
		WithCode(CodeInvalidStage)
}

// HasCode reports whether err carries the given apperr code.
func HasCode(err error, code string) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e.Code == code
}
