package service

import (
	"context"
	"errors"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"
	"sales_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// CompleteInput is the outcome of a contact cycle.
type CompleteInput struct {
	AdaRespon           bool
	Catatan             *string
	HasilFollowup       *string
	AutoScheduleNext    *bool
	ProgressToNextStage bool
	NextStage           *string
}

// CompleteResult reports what a completion produced.
type CompleteResult struct {
	FollowUp  domain.FollowUp
	Successor *domain.FollowUp
	Exhausted bool
}

// Complete finalizes a scheduled record and, when requested, schedules its
// successor in the same transaction. Only one of several concurrent calls
// wins; the others get ErrAlreadyCompleted. The lead status is not touched.
func (s *Service) Complete(ctx context.Context, scope access.Scope, id uuid.UUID, in CompleteInput) (CompleteResult, error) {
	view, err := s.loadMutable(ctx, scope, id)
	if err != nil {
		return CompleteResult{}, err
	}
	if !view.IsScheduled() {
		return CompleteResult{}, domain.AlreadyCompleted()
	}
	if in.NextStage != nil && !in.ProgressToNextStage {
		return CompleteResult{}, domain.Validation("next_stage requires progress_to_next_stage")
	}

	autoNext := in.AutoScheduleNext == nil || *in.AutoScheduleNext
	params := repository.CompleteParams{
		AdaRespon:     in.AdaRespon,
		Catatan:       sanitize.TextPtr(in.Catatan),
		HasilFollowup: sanitize.TextPtr(in.HasilFollowup),
		CompletedAt:   s.clock.Now().UTC(),
	}

	var result CompleteResult
	err = s.repo.WithinTx(ctx, func(tx repository.Repository) error {
		completed, err := tx.CompleteFollowUp(ctx, id, params)
		if err != nil {
			if errors.Is(err, domain.ErrStaleState) {
				return domain.AlreadyCompleted()
			}
			return err
		}
		result.FollowUp = completed
		result.Exhausted = domain.IsExhausted(completed, in.AdaRespon, in.ProgressToNextStage)

		if !autoNext || (result.Exhausted && s.exhausted == domain.ExhaustedStop) {
			return nil
		}

		successor, err := s.scheduleSuccessor(ctx, tx, completed, in.ProgressToNextStage, in.NextStage)
		if err != nil {
			return err
		}
		result.Successor = successor
		return nil
	})
	if err != nil {
		return CompleteResult{}, err
	}

	s.log.WithContext(ctx).Info("follow-up completed",
		"followUpId", id,
		"leadId", result.FollowUp.LeadID,
		"adaRespon", in.AdaRespon,
		"progress", in.ProgressToNextStage,
		"exhausted", result.Exhausted,
	)
	s.publishCompletion(ctx, result, view.BranchID)
	return result, nil
}

func (s *Service) publishCompletion(ctx context.Context, result CompleteResult, branchID uuid.UUID) {
	rec := result.FollowUp
	completed := events.FollowUpCompleted{
		BaseEvent:  events.NewBaseEvent(),
		FollowUpID: rec.ID,
		LeadID:     rec.LeadID,
		UserID:     rec.UserID,
		StageKey:   rec.StageKey,
		Exhausted:  result.Exhausted,
	}
	if rec.AdaRespon != nil {
		completed.AdaRespon = *rec.AdaRespon
	}
	if result.Successor != nil {
		successorID := result.Successor.ID
		completed.SuccessorID = &successorID
	}
	s.publish(ctx, completed)

	if result.Exhausted {
		s.publish(ctx, events.FollowUpExhausted{
			BaseEvent:  events.NewBaseEvent(),
			FollowUpID: rec.ID,
			LeadID:     rec.LeadID,
			UserID:     rec.UserID,
			BranchID:   branchID,
			StageKey:   rec.StageKey,
			Attempt:    rec.Attempt,
		})
	}
	if result.Successor != nil {
		s.publishScheduled(ctx, *result.Successor)
	}
}
