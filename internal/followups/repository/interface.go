package repository

import (
	"context"
	"time"

	"sales_crm_backend/internal/followups/domain"

	"github.com/google/uuid"
)

// StageOrder is one entry of a bulk reorder.
type StageOrder struct {
	ID           uuid.UUID
	DisplayOrder int
}

// CompleteParams carries the outcome written by a completion.
type CompleteParams struct {
	AdaRespon     bool
	Catatan       *string
	HasilFollowup *string
	CompletedAt   time.Time
}

// UserContact is what reminders need to reach the owning user.
type UserContact struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// StageReader provides read operations for the stage catalog.
type StageReader interface {
	ListStages(ctx context.Context, activeOnly bool) ([]domain.Stage, error)
	GetStage(ctx context.Context, id uuid.UUID) (domain.Stage, error)
	StageInUse(ctx context.Context, key string) (bool, error)
}

// StageWriter provides write operations for the stage catalog.
type StageWriter interface {
	CreateStage(ctx context.Context, stage domain.Stage) (domain.Stage, error)
	UpdateStage(ctx context.Context, stage domain.Stage) (domain.Stage, error)
	DeleteStage(ctx context.Context, id uuid.UUID) error
	SetStageActive(ctx context.Context, id uuid.UUID, isActive bool) (domain.Stage, error)
	UpdateStageOrder(ctx context.Context, items []StageOrder) (int, error)
}

// FollowUpReader provides scoped reads of follow-up records.
type FollowUpReader interface {
	GetLead(ctx context.Context, leadID uuid.UUID) (domain.LeadRef, error)
	GetFollowUp(ctx context.Context, id uuid.UUID) (domain.FollowUpView, error)
	HasScheduled(ctx context.Context, leadID uuid.UUID) (bool, error)
	ListFollowUps(ctx context.Context, filter domain.ListFilter) ([]domain.FollowUpView, error)
	CountStatistics(ctx context.Context, filter domain.ListFilter) (domain.Statistics, error)
	StageBreakdown(ctx context.Context, filter domain.ListFilter) ([]domain.StageCount, error)
	GetUserContact(ctx context.Context, userID uuid.UUID) (UserContact, error)
}

// FollowUpWriter provides the guarded writes. Every update only applies to a
// record that is still scheduled and returns domain.ErrStaleState otherwise.
type FollowUpWriter interface {
	InsertFollowUp(ctx context.Context, rec domain.FollowUp) (domain.FollowUp, error)
	CompleteFollowUp(ctx context.Context, id uuid.UUID, params CompleteParams) (domain.FollowUp, error)
	RescheduleFollowUp(ctx context.Context, id uuid.UUID, scheduledAt time.Time) (domain.FollowUp, error)
	SetAttemptSlot(ctx context.Context, id uuid.UUID, number int, completed bool, at *time.Time) (domain.FollowUp, error)
}

// Repository combines all follow-up repository operations.
type Repository interface {
	StageReader
	StageWriter
	FollowUpReader
	FollowUpWriter
	// WithinTx runs fn against a transaction-bound repository. The
	// transaction commits when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}
