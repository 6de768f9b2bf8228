package service

import (
	"context"
	"errors"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"

	"github.com/google/uuid"
)

// Reschedule moves a scheduled record. scheduledAt is local wall clock time
// and must be strictly in the future.
func (s *Service) Reschedule(ctx context.Context, scope access.Scope, id uuid.UUID, scheduledAt string) (domain.FollowUp, error) {
	view, err := s.loadMutable(ctx, scope, id)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if !view.IsScheduled() {
		return domain.FollowUp{}, domain.AlreadyCompleted()
	}

	at, err := s.policy.ParseWallClock(scheduledAt)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if !at.After(s.clock.Now()) {
		return domain.FollowUp{}, domain.Validation("scheduled time must be in the future")
	}

	rec, err := s.repo.RescheduleFollowUp(ctx, id, at)
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return domain.FollowUp{}, s.classifyStale(ctx, id)
		}
		return domain.FollowUp{}, err
	}

	s.log.WithContext(ctx).Info("follow-up rescheduled", "followUpId", id, "from", view.ScheduledAt, "to", rec.ScheduledAt)
	s.publish(ctx, events.FollowUpRescheduled{
		BaseEvent:   events.NewBaseEvent(),
		FollowUpID:  rec.ID,
		LeadID:      rec.LeadID,
		UserID:      rec.UserID,
		PreviousAt:  view.ScheduledAt,
		ScheduledAt: rec.ScheduledAt,
	})
	return rec, nil
}
