// Package events defines the domain events exchanged between the leads,
// follow-up and notification modules. The bus itself lives in platform/events.
package events

import (
	"time"

	"sales_crm_backend/platform/events"
	"sales_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates the process-local bus shared by all modules.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published after a lead is stored. The follow-up module
// starts the contact cadence from it.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	OwnerID  uuid.UUID `json:"ownerId"`
	BranchID uuid.UUID `json:"branchId"`
	Status   string    `json:"status"`
	Name     string    `json:"name"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a lead moves between statuses.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Reason    string    `json:"reason,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// =============================================================================
// Follow-Up Domain Events
// =============================================================================

// FollowUpScheduled is published for every new scheduled record.
type FollowUpScheduled struct {
	BaseEvent
	FollowUpID    uuid.UUID `json:"followUpId"`
	LeadID        uuid.UUID `json:"leadId"`
	UserID        uuid.UUID `json:"userId"`
	StageKey      string    `json:"stageKey"`
	Attempt       int       `json:"attempt"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	AutoScheduled bool      `json:"autoScheduled"`
}

func (e FollowUpScheduled) EventName() string { return "followups.scheduled" }

// FollowUpRescheduled is published when a scheduled record moves.
type FollowUpRescheduled struct {
	BaseEvent
	FollowUpID  uuid.UUID `json:"followUpId"`
	LeadID      uuid.UUID `json:"leadId"`
	UserID      uuid.UUID `json:"userId"`
	PreviousAt  time.Time `json:"previousAt"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (e FollowUpRescheduled) EventName() string { return "followups.rescheduled" }

// FollowUpCompleted is published once per record, by the winner of the
// completion.
type FollowUpCompleted struct {
	BaseEvent
	FollowUpID  uuid.UUID  `json:"followUpId"`
	LeadID      uuid.UUID  `json:"leadId"`
	UserID      uuid.UUID  `json:"userId"`
	StageKey    string     `json:"stageKey"`
	AdaRespon   bool       `json:"adaRespon"`
	SuccessorID *uuid.UUID `json:"successorId,omitempty"`
	Exhausted   bool       `json:"exhausted"`
}

func (e FollowUpCompleted) EventName() string { return "followups.completed" }

// FollowUpExhausted is published when a stage ran out of attempts without a
// response.
type FollowUpExhausted struct {
	BaseEvent
	FollowUpID uuid.UUID `json:"followUpId"`
	LeadID     uuid.UUID `json:"leadId"`
	UserID     uuid.UUID `json:"userId"`
	BranchID   uuid.UUID `json:"branchId"`
	StageKey   string    `json:"stageKey"`
	Attempt    int       `json:"attempt"`
}

func (e FollowUpExhausted) EventName() string { return "followups.exhausted" }

// FollowUpReminderDue is published by the scheduler worker shortly before a
// record is due.
type FollowUpReminderDue struct {
	BaseEvent
	FollowUpID  uuid.UUID `json:"followUpId"`
	LeadID      uuid.UUID `json:"leadId"`
	UserID      uuid.UUID `json:"userId"`
	LeadName    string    `json:"leadName"`
	LeadPhone   string    `json:"leadPhone"`
	StageName   string    `json:"stageName"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (e FollowUpReminderDue) EventName() string { return "followups.reminder_due" }
