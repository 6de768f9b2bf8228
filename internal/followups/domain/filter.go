package domain

import (
	"time"

	"sales_crm_backend/internal/access"

	"github.com/google/uuid"
)

// TimeRange is the half-open interval [From, To). A zero bound is open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// ListFilter narrows record reads. Scope is always applied.
type ListFilter struct {
	Scope     access.Scope
	LeadID    *uuid.UUID
	Status    *Status
	Scheduled *TimeRange
	Completed *TimeRange
	AdaRespon *bool
}

// Matches is the in-memory form of the filter, kept in step with the SQL
// built by the repository.
func (f ListFilter) Matches(v FollowUpView) bool {
	if !f.Scope.Allows(v.LeadOwnerID, v.BranchID) {
		return false
	}
	if f.LeadID != nil && v.LeadID != *f.LeadID {
		return false
	}
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	if f.Scheduled != nil && !f.Scheduled.Contains(v.ScheduledAt) {
		return false
	}
	if f.Completed != nil {
		if v.CompletedAt == nil || !f.Completed.Contains(*v.CompletedAt) {
			return false
		}
	}
	if f.AdaRespon != nil {
		if v.AdaRespon == nil || *v.AdaRespon != *f.AdaRespon {
			return false
		}
	}
	return true
}

// TodayFilter selects scheduled records due on the local day [start, end).
func TodayFilter(scope access.Scope, start, end time.Time) ListFilter {
	status := StatusScheduled
	return ListFilter{Scope: scope, Status: &status, Scheduled: &TimeRange{From: start, To: end}}
}

// OverdueFilter selects scheduled records due before the local day started.
func OverdueFilter(scope access.Scope, start time.Time) ListFilter {
	status := StatusScheduled
	return ListFilter{Scope: scope, Status: &status, Scheduled: &TimeRange{To: start}}
}

// SuccessfulFilter selects records completed today with a response.
func SuccessfulFilter(scope access.Scope, start, end time.Time) ListFilter {
	status := StatusCompleted
	responded := true
	return ListFilter{Scope: scope, Status: &status, Completed: &TimeRange{From: start, To: end}, AdaRespon: &responded}
}
