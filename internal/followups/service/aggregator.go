package service

import (
	"context"
	"errors"
	"strings"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/followups/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DateRange is an optional inclusive range of local dates (YYYY-MM-DD).
// Both ends empty means no range.
type DateRange struct {
	Start string
	End   string
}

func (s *Service) resolveRange(dates DateRange) (*domain.TimeRange, error) {
	start, end := strings.TrimSpace(dates.Start), strings.TrimSpace(dates.End)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, domain.Validation("start_date and end_date must be given together")
	}

	from, err := s.policy.ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := s.policy.ParseDate(end)
	if err != nil {
		return nil, err
	}
	r, err := s.policy.DateRangeBounds(from, to)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Dashboard computes today's, overdue and today's successful buckets as of
// now. The three reads run concurrently.
func (s *Service) Dashboard(ctx context.Context, scope access.Scope) (domain.Dashboard, error) {
	start, end := s.policy.DayBounds(s.clock.Now())

	var dash domain.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.repo.ListFollowUps(gctx, domain.TodayFilter(scope, start, end))
		dash.Today = items
		return err
	})
	g.Go(func() error {
		items, err := s.repo.ListFollowUps(gctx, domain.OverdueFilter(scope, start))
		dash.Overdue = items
		return err
	})
	g.Go(func() error {
		items, err := s.repo.ListFollowUps(gctx, domain.SuccessfulFilter(scope, start, end))
		dash.Successful = items
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}
	return dash, nil
}

// ListInRange returns records scheduled inside the range, earliest first.
func (s *Service) ListInRange(ctx context.Context, scope access.Scope, dates DateRange) ([]domain.FollowUpView, error) {
	r, err := s.resolveRange(dates)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.Validation("start_date and end_date are required")
	}
	return s.repo.ListFollowUps(ctx, domain.ListFilter{Scope: scope, Scheduled: r})
}

// Statistics counts records in scope, optionally restricted by scheduled date.
func (s *Service) Statistics(ctx context.Context, scope access.Scope, dates DateRange) (domain.Statistics, error) {
	r, err := s.resolveRange(dates)
	if err != nil {
		return domain.Statistics{}, err
	}
	return s.repo.CountStatistics(ctx, domain.ListFilter{Scope: scope, Scheduled: r})
}

// StageBreakdown counts records per stage in display order.
func (s *Service) StageBreakdown(ctx context.Context, scope access.Scope, dates DateRange) ([]domain.StageCount, error) {
	r, err := s.resolveRange(dates)
	if err != nil {
		return nil, err
	}
	return s.repo.StageBreakdown(ctx, domain.ListFilter{Scope: scope, Scheduled: r})
}

// Get returns one record visible to the caller.
func (s *Service) Get(ctx context.Context, scope access.Scope, id uuid.UUID) (domain.FollowUpView, error) {
	view, err := s.repo.GetFollowUp(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FollowUpView{}, domain.Unauthorized()
		}
		return domain.FollowUpView{}, err
	}
	if !scope.Allows(view.LeadOwnerID, view.BranchID) {
		return domain.FollowUpView{}, domain.Unauthorized()
	}
	return view, nil
}

// LeadHistory returns every record of a lead, earliest first.
func (s *Service) LeadHistory(ctx context.Context, scope access.Scope, leadID uuid.UUID) ([]domain.FollowUpView, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized()
		}
		return nil, err
	}
	if !scope.Allows(lead.OwnerID, lead.BranchID) {
		return nil, domain.Unauthorized()
	}
	return s.repo.ListFollowUps(ctx, domain.ListFilter{Scope: scope, LeadID: &leadID})
}
