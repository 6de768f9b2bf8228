// Package service implements the lead lifecycle used around the follow-up
// engine: creation, scoped reads, status transitions and retirement.
package service

import (
	"context"
	"errors"
	"strings"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"
	"sales_crm_backend/platform/phone"
	"sales_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

const exhaustedReason = "no response after all follow-up attempts"

// CreateInput carries a new lead. BranchID may be omitted when the caller
// works in exactly one branch or has an active branch selected.
type CreateInput struct {
	Name           string
	Phone          string
	Email          *string
	Address        *string
	Status         string
	PotentialValue int64
	BranchID       *uuid.UUID
}

type Service struct {
	repo            repository.LeadStore
	bus             events.Bus
	region          string
	coldOnExhausted bool
	log             *logger.Logger
}

func New(repo repository.LeadStore, bus events.Bus, cfg config.LeadConfig, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:            repo,
		bus:             bus,
		region:          cfg.GetPhoneRegion(),
		coldOnExhausted: cfg.GetColdOnExhausted(),
		log:             log,
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

// Create stores a lead owned by the caller and announces it synchronously,
// which starts the follow-up cadence for WARM and HOT leads. When a
// subscriber fails the lead is removed again and the error is returned.
func (s *Service) Create(ctx context.Context, scope access.Scope, in CreateInput) (domain.Lead, error) {
	name := domain.NormalizeName(sanitize.Text(in.Name))
	if name == "" {
		return domain.Lead{}, domain.Validation("name is required")
	}
	if !phone.IsValid(in.Phone, s.region) {
		return domain.Lead{}, domain.Validation("invalid phone number %q", in.Phone)
	}

	status := domain.StatusWarm
	if strings.TrimSpace(in.Status) != "" {
		parsed, err := domain.ParseStatus(in.Status)
		if err != nil {
			return domain.Lead{}, err
		}
		status = parsed
	}
	if in.PotentialValue < 0 {
		return domain.Lead{}, domain.Validation("potential value must not be negative")
	}

	branchID, err := s.resolveBranch(scope, in.BranchID)
	if err != nil {
		return domain.Lead{}, err
	}

	lead, err := s.repo.Create(ctx, domain.Lead{
		OwnerID:        scope.UserID,
		BranchID:       branchID,
		Name:           name,
		Phone:          phone.NormalizeE164WithRegion(in.Phone, s.region),
		Email:          trimmedPtr(in.Email),
		Address:        sanitize.TextPtr(in.Address),
		Status:         status,
		PotentialValue: in.PotentialValue,
	})
	if err != nil {
		return domain.Lead{}, err
	}

	if err := s.announceCreated(ctx, lead); err != nil {
		if delErr := s.repo.Delete(ctx, lead.ID); delErr != nil {
			s.log.WithContext(ctx).Error("failed to remove lead after announce failure", "error", delErr, "leadId", lead.ID)
		}
		return domain.Lead{}, err
	}

	s.log.WithContext(ctx).Info("lead created", "leadId", lead.ID, "ownerId", lead.OwnerID, "status", lead.Status)
	return lead, nil
}

func (s *Service) announceCreated(ctx context.Context, lead domain.Lead) error {
	if s.bus == nil {
		return nil
	}
	return s.bus.PublishSync(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		OwnerID:   lead.OwnerID,
		BranchID:  lead.BranchID,
		Status:    string(lead.Status),
		Name:      lead.Name,
	})
}

func (s *Service) resolveBranch(scope access.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	if requested != nil {
		if scope.IsSuperUser() {
			return *requested, nil
		}
		for _, id := range scope.BranchIDs {
			if id == *requested {
				return id, nil
			}
		}
		return uuid.Nil, domain.Unauthorized()
	}
	if branchID, ok := scope.DefaultBranch(); ok {
		return branchID, nil
	}
	return uuid.Nil, domain.Validation("branch is required")
}

// Get returns a lead visible to the caller. Missing and hidden leads look
// the same.
func (s *Service) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Lead{}, domain.Unauthorized()
		}
		return domain.Lead{}, err
	}
	if !scope.Allows(lead.OwnerID, lead.BranchID) {
		return domain.Lead{}, domain.Unauthorized()
	}
	return lead, nil
}

// List returns the caller's visible leads, newest first.
func (s *Service) List(ctx context.Context, scope access.Scope, status string, activeOnly bool) ([]domain.Lead, error) {
	filter := repository.ListFilter{Scope: scope, ActiveOnly: activeOnly}
	if strings.TrimSpace(status) != "" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) loadMutable(ctx context.Context, scope access.Scope, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Lead{}, domain.Unauthorized()
		}
		return domain.Lead{}, err
	}
	if !scope.CanMutate(lead.OwnerID) {
		return domain.Lead{}, domain.Unauthorized()
	}
	return lead, nil
}

// UpdateStatus moves a lead to a new status, typically after a follow-up
// outcome. Setting the current status again is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, scope access.Scope, id uuid.UUID, status string, reason *string) (domain.Lead, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Lead{}, err
	}
	lead, err := s.loadMutable(ctx, scope, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if !lead.IsActive {
		return domain.Lead{}, domain.Inactive()
	}
	if lead.Status == next {
		return lead, nil
	}
	return s.transition(ctx, lead, next, sanitize.TextPtr(reason))
}

func (s *Service) transition(ctx context.Context, lead domain.Lead, next domain.Status, reason *string) (domain.Lead, error) {
	updated, err := s.repo.UpdateStatus(ctx, lead.ID, lead.Status, lead.WithStatus(next, reason))
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return domain.Lead{}, domain.Stale()
		}
		return domain.Lead{}, err
	}

	s.log.WithContext(ctx).Info("lead status changed", "leadId", lead.ID, "from", lead.Status, "to", updated.Status)
	changed := events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    updated.ID,
		OwnerID:   updated.OwnerID,
		OldStatus: string(lead.Status),
		NewStatus: string(updated.Status),
	}
	if reason != nil {
		changed.Reason = *reason
	}
	s.publish(ctx, changed)
	return updated, nil
}

// Deactivate soft-retires a lead. Leads are never deleted.
func (s *Service) Deactivate(ctx context.Context, scope access.Scope, id uuid.UUID) (domain.Lead, error) {
	if _, err := s.loadMutable(ctx, scope, id); err != nil {
		return domain.Lead{}, err
	}
	lead, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	s.log.WithContext(ctx).Info("lead deactivated", "leadId", id)
	return lead, nil
}

// HandleFollowUpExhausted downgrades a WARM or HOT lead to COLD once its
// cadence ran out of attempts, if configured to. A lead that moved on in the
// meantime is left alone.
func (s *Service) HandleFollowUpExhausted(ctx context.Context, e events.FollowUpExhausted) error {
	if !s.coldOnExhausted {
		return nil
	}
	lead, err := s.repo.GetByID(ctx, e.LeadID)
	if err != nil {
		return err
	}
	if !lead.IsActive || !lead.Status.RequiresOutreach() {
		return nil
	}

	reason := exhaustedReason
	if _, err := s.transition(ctx, lead, domain.StatusCold, &reason); err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			s.log.WithContext(ctx).Info("lead changed before cold downgrade", "leadId", lead.ID)
			return nil
		}
		return err
	}
	return nil
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
