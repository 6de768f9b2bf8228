// Package service implements the follow-up engine: the stage catalog, the
// scheduler, attempt tracking, completion, rescheduling and the aggregator.
package service

import (
	"context"
	"errors"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Service provides business logic for follow-ups.
type Service struct {
	repo      repository.Repository
	bus       events.Bus
	clock     domain.Clock
	policy    domain.SlotPolicy
	exhausted domain.ExhaustedPolicy
	log       *logger.Logger
}

// New creates a new follow-up service.
func New(repo repository.Repository, bus events.Bus, cfg config.FollowUpConfig, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:  repo,
		bus:   bus,
		clock: domain.SystemClock{},
		policy: domain.SlotPolicy{
			Location:           cfg.GetLocation(),
			SlotHour:           cfg.GetFirstSlotHour(),
			SuccessorDelayDays: cfg.GetSuccessorDelayDays(),
		},
		exhausted: domain.ParseExhaustedPolicy(cfg.GetExhaustedPolicy()),
		log:       log,
	}
}

// WithClock replaces the clock. Used by tests.
func (s *Service) WithClock(clock domain.Clock) *Service {
	s.clock = clock
	return s
}

// Policy exposes the slot policy so callers can parse local dates the same
// way the engine does.
func (s *Service) Policy() domain.SlotPolicy {
	return s.policy
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}

// loadMutable reads a record the caller wants to change. Missing records and
// records of someone else's lead produce the same error.
func (s *Service) loadMutable(ctx context.Context, scope access.Scope, id uuid.UUID) (domain.FollowUpView, error) {
	view, err := s.repo.GetFollowUp(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FollowUpView{}, domain.Unauthorized()
		}
		return domain.FollowUpView{}, err
	}
	if !scope.CanMutate(view.LeadOwnerID) {
		return domain.FollowUpView{}, domain.Unauthorized()
	}
	return view, nil
}

// classifyStale turns a lost guarded update into the error the caller sees.
func (s *Service) classifyStale(ctx context.Context, id uuid.UUID) error {
	view, err := s.repo.GetFollowUp(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Unauthorized()
		}
		return err
	}
	if !view.IsScheduled() {
		return domain.AlreadyCompleted()
	}
	return domain.Stale()
}
