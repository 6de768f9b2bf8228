package service

import (
	"context"
	"errors"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/followups/domain"

	"github.com/google/uuid"
)

// MarkAttempt marks a sub-attempt of a scheduled record. A nil number marks
// the next free slot.
func (s *Service) MarkAttempt(ctx context.Context, scope access.Scope, id uuid.UUID, number *int) (domain.FollowUp, error) {
	view, err := s.loadMutable(ctx, scope, id)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if !view.IsScheduled() {
		return domain.FollowUp{}, domain.AlreadyCompleted()
	}

	n, err := view.ResolveAttemptNumber(number)
	if err != nil {
		return domain.FollowUp{}, err
	}

	now := s.clock.Now()
	draft := view.FollowUp
	if err := draft.MarkAttempt(n, now); err != nil {
		return domain.FollowUp{}, err
	}

	stamp := now.UTC()
	rec, err := s.repo.SetAttemptSlot(ctx, id, n, true, &stamp)
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return domain.FollowUp{}, s.classifyStale(ctx, id)
		}
		return domain.FollowUp{}, err
	}

	s.log.WithContext(ctx).Info("follow-up attempt marked", "followUpId", id, "attempt", n, "completedAttempts", rec.CompletedAttempts())
	return rec, nil
}

// UnmarkAttempt clears a sub-attempt of a scheduled record.
func (s *Service) UnmarkAttempt(ctx context.Context, scope access.Scope, id uuid.UUID, number int) (domain.FollowUp, error) {
	view, err := s.loadMutable(ctx, scope, id)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if !view.IsScheduled() {
		return domain.FollowUp{}, domain.AlreadyCompleted()
	}

	draft := view.FollowUp
	if err := draft.UnmarkAttempt(number); err != nil {
		return domain.FollowUp{}, err
	}

	rec, err := s.repo.SetAttemptSlot(ctx, id, number, false, nil)
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return domain.FollowUp{}, s.classifyStale(ctx, id)
		}
		return domain.FollowUp{}, err
	}

	s.log.WithContext(ctx).Info("follow-up attempt unmarked", "followUpId", id, "attempt", number)
	return rec, nil
}
