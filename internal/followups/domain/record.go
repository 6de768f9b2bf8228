package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a follow-up record.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusCompleted
}

// MaxSubAttempts is the number of contact touches one record tracks.
const MaxSubAttempts = 3

// AttemptSlot is one of the three sub-attempts of a record.
type AttemptSlot struct {
	Completed   bool
	CompletedAt *time.Time
}

// FollowUp is one attempt cycle of one stage for one lead.
type FollowUp struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	UserID        uuid.UUID
	StageKey      string
	Attempt       int
	Slots         [MaxSubAttempts]AttemptSlot
	ScheduledAt   time.Time
	CompletedAt   *time.Time
	Status        Status
	AdaRespon     *bool
	Catatan       *string
	HasilFollowup *string
	AutoScheduled bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsScheduled reports whether the record is still actionable.
func (f FollowUp) IsScheduled() bool {
	return f.Status == StatusScheduled
}

// FollowUpView is a record joined with the lead and stage columns the lists
// and dashboards show.
type FollowUpView struct {
	FollowUp
	LeadName    string
	LeadPhone   string
	LeadStatus  string
	LeadOwnerID uuid.UUID
	BranchID    uuid.UUID
	StageName   string
}

// LeadRef is the slice of a lead the engine needs: ownership, branch and the
// status deciding whether outreach starts.
type LeadRef struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	BranchID uuid.UUID
	Status   string
	IsActive bool
}

// RequiresOutreach reports whether a new lead gets a first follow-up.
func (l LeadRef) RequiresOutreach() bool {
	return l.IsActive && (l.Status == "WARM" || l.Status == "HOT")
}
