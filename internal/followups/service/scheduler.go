package service

import (
	"context"
	"errors"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"
	"sales_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// CreateInput is a manual scheduling request. ScheduledAt is local wall
// clock time (or RFC 3339 with an explicit offset).
type CreateInput struct {
	LeadID      uuid.UUID
	StageKey    string
	Attempt     int
	ScheduledAt string
}

// CreateFirstFollowUp starts the cadence of a new lead at the first active
// stage. Leads not needing outreach, and leads that already have a scheduled
// record, are left alone and return nil.
func (s *Service) CreateFirstFollowUp(ctx context.Context, lead domain.LeadRef) (*domain.FollowUp, error) {
	if !lead.RequiresOutreach() {
		return nil, nil
	}

	exists, err := s.repo.HasScheduled(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	stages, err := s.repo.ListStages(ctx, true)
	if err != nil {
		return nil, err
	}
	first, ok := domain.FirstActive(stages)
	if !ok {
		return nil, domain.NoActiveStage()
	}

	rec, err := s.repo.InsertFollowUp(ctx, domain.FollowUp{
		LeadID:      lead.ID,
		UserID:      lead.OwnerID,
		StageKey:    first.Key,
		Attempt:     1,
		ScheduledAt: s.policy.NextBusinessSlot(s.clock.Now()),
	})
	if err != nil {
		if domain.HasCode(err, domain.CodeScheduledExists) {
			return nil, nil
		}
		return nil, err
	}

	s.log.WithContext(ctx).Info("first follow-up scheduled", "followUpId", rec.ID, "leadId", rec.LeadID, "stage", rec.StageKey, "scheduledAt", rec.ScheduledAt)
	s.publishScheduled(ctx, rec)
	return &rec, nil
}

// CreateFollowUp schedules a record by hand for a lead the caller owns.
func (s *Service) CreateFollowUp(ctx context.Context, scope access.Scope, in CreateInput) (domain.FollowUp, error) {
	lead, err := s.repo.GetLead(ctx, in.LeadID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FollowUp{}, domain.Unauthorized()
		}
		return domain.FollowUp{}, err
	}
	if !scope.CanMutate(lead.OwnerID) {
		return domain.FollowUp{}, domain.Unauthorized()
	}

	attempt := in.Attempt
	if attempt == 0 {
		attempt = 1
	}
	if attempt < 1 {
		return domain.FollowUp{}, domain.Validation("attempt must be at least 1")
	}

	scheduledAt, err := s.policy.ParseWallClock(in.ScheduledAt)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if !scheduledAt.After(s.clock.Now()) {
		return domain.FollowUp{}, domain.Validation("scheduled time must be in the future")
	}

	stageKey := domain.NormalizeStageKey(in.StageKey)
	active, err := s.repo.ListStages(ctx, true)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if !domain.NewStageChain(active).Has(stageKey) {
		return domain.FollowUp{}, domain.Validation("stage %q is unknown or inactive", stageKey)
	}

	exists, err := s.repo.HasScheduled(ctx, lead.ID)
	if err != nil {
		return domain.FollowUp{}, err
	}
	if exists {
		return domain.FollowUp{}, apperr.Conflict("lead already has a scheduled follow-up").WithCode(domain.CodeScheduledExists)
	}

	rec, err := s.repo.InsertFollowUp(ctx, domain.FollowUp{
		LeadID:      lead.ID,
		UserID:      lead.OwnerID,
		StageKey:    stageKey,
		Attempt:     attempt,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return domain.FollowUp{}, err
	}

	s.log.WithContext(ctx).Info("follow-up scheduled", "followUpId", rec.ID, "leadId", rec.LeadID, "stage", rec.StageKey, "actor", scope.UserID)
	s.publishScheduled(ctx, rec)
	return rec, nil
}

// scheduleSuccessor creates the auto-scheduled record following a completed
// one. With advance it moves to explicitNext or the chain's next stage (nil
// at the end of the chain); otherwise it opens the next cycle of the same
// stage.
func (s *Service) scheduleSuccessor(ctx context.Context, tx repository.Repository, completed domain.FollowUp, advance bool, explicitNext *string) (*domain.FollowUp, error) {
	stageKey := completed.StageKey
	attempt := completed.Attempt + 1

	if advance {
		dest, err := s.resolveDestination(ctx, tx, completed.StageKey, explicitNext)
		if err != nil {
			return nil, err
		}
		if dest == nil {
			return nil, nil
		}
		stageKey = *dest
		attempt = 1
	}

	completedAt := s.clock.Now()
	if completed.CompletedAt != nil {
		completedAt = *completed.CompletedAt
	}

	rec, err := tx.InsertFollowUp(ctx, domain.FollowUp{
		LeadID:        completed.LeadID,
		UserID:        completed.UserID,
		StageKey:      stageKey,
		Attempt:       attempt,
		ScheduledAt:   s.policy.SuccessorAt(completedAt),
		AutoScheduled: true,
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// resolveDestination picks the stage a progression lands on. An explicit
// stage must be active. A chain pointer to an inactive stage is followed
// until an active stage or the end of the chain.
func (s *Service) resolveDestination(ctx context.Context, tx repository.Repository, from string, explicitNext *string) (*string, error) {
	stages, err := tx.ListStages(ctx, false)
	if err != nil {
		return nil, err
	}
	if explicitNext != nil {
		key := domain.NormalizeStageKey(*explicitNext)
		for _, st := range stages {
			if st.Key == key && st.IsActive {
				return &key, nil
			}
		}
		return nil, domain.Validation("next stage %q is unknown or inactive", key)
	}
	return domain.NextActive(stages, from)
}

func (s *Service) publishScheduled(ctx context.Context, rec domain.FollowUp) {
	s.publish(ctx, events.FollowUpScheduled{
		BaseEvent:     events.NewBaseEvent(),
		FollowUpID:    rec.ID,
		LeadID:        rec.LeadID,
		UserID:        rec.UserID,
		StageKey:      rec.StageKey,
		Attempt:       rec.Attempt,
		ScheduledAt:   rec.ScheduledAt,
		AutoScheduled: rec.AutoScheduled,
	})
}
