package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type StageRequest struct {
	Key          string  `json:"key" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=100"`
	DisplayOrder int     `json:"displayOrder" validate:"min=0"`
	NextStageKey *string `json:"nextStageKey,omitempty" validate:"omitempty,max=50"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

type ReorderItem struct {
	ID           uuid.UUID `json:"id" validate:"required"`
	DisplayOrder int       `json:"displayOrder" validate:"min=0"`
}

type ReorderStagesRequest struct {
	Items []ReorderItem `json:"items" validate:"required,min=1,dive"`
}

type CreateFollowUpRequest struct {
	LeadID      uuid.UUID `json:"leadId" validate:"required"`
	StageKey    string    `json:"stageKey" validate:"required,max=50"`
	Attempt     int       `json:"attempt,omitempty" validate:"min=0"`
	ScheduledAt string    `json:"scheduledAt" validate:"required"`
}

type MarkAttemptRequest struct {
	Attempt *int `json:"attempt,omitempty" validate:"omitempty,min=1,max=3"`
}

type CompleteFollowUpRequest struct {
	AdaRespon           *bool   `json:"adaRespon" validate:"required"`
	Catatan             *string `json:"catatan,omitempty" validate:"omitempty,max=2000"`
	HasilFollowup       *string `json:"hasilFollowup,omitempty" validate:"omitempty,max=2000"`
	AutoScheduleNext    *bool   `json:"autoScheduleNext,omitempty"`
	ProgressToNextStage bool    `json:"progressToNextStage"`
	NextStage           *string `json:"nextStage,omitempty" validate:"omitempty,max=50"`
}

type RescheduleFollowUpRequest struct {
	ScheduledAt string `json:"scheduledAt" validate:"required"`
}

type DateRangeQuery struct {
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs
type StageResponse struct {
	ID           uuid.UUID `json:"id"`
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	NextStageKey *string   `json:"nextStageKey"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReorderStagesResponse struct {
	Updated int `json:"updated"`
}

type AttemptSlotResponse struct {
	Number      int        `json:"number"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

type LeadSummary struct {
	Name   string    `json:"name"`
	Phone  string    `json:"phone"`
	Status string    `json:"status"`
	Owner  uuid.UUID `json:"ownerId"`
	Branch uuid.UUID `json:"branchId"`
}

type FollowUpResponse struct {
	ID                uuid.UUID             `json:"id"`
	LeadID            uuid.UUID             `json:"leadId"`
	UserID            uuid.UUID             `json:"userId"`
	StageKey          string                `json:"stageKey"`
	StageName         string                `json:"stageName,omitempty"`
	Attempt           int                   `json:"attempt"`
	Attempts          []AttemptSlotResponse `json:"attempts"`
	CompletedAttempts int                   `json:"completedAttempts"`
	NextAttemptNumber *int                  `json:"nextAttemptNumber"`
	AllAttemptsDone   bool                  `json:"allAttemptsDone"`
	ScheduledAt       time.Time             `json:"scheduledAt"`
	CompletedAt       *time.Time            `json:"completedAt"`
	Status            string                `json:"status"`
	AdaRespon         *bool                 `json:"adaRespon"`
	Catatan           *string               `json:"catatan"`
	HasilFollowup     *string               `json:"hasilFollowup"`
	AutoScheduled     bool                  `json:"autoScheduled"`
	Lead              *LeadSummary          `json:"lead,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

type FollowUpListResponse struct {
	Items []FollowUpResponse `json:"items"`
	Total int                `json:"total"`
}

type CompleteFollowUpResponse struct {
	FollowUp     FollowUpResponse  `json:"followUp"`
	NextFollowUp *FollowUpResponse `json:"nextFollowUp"`
	Exhausted    bool              `json:"exhausted"`
}

type DashboardResponse struct {
	Today      []FollowUpResponse `json:"today"`
	Overdue    []FollowUpResponse `json:"overdue"`
	Successful []FollowUpResponse `json:"successful"`
	Counts     DashboardCounts    `json:"counts"`
}

type DashboardCounts struct {
	Today      int `json:"today"`
	Overdue    int `json:"overdue"`
	Successful int `json:"successful"`
}

type StatisticsResponse struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	NoResponse   int     `json:"noResponse"`
	Scheduled    int     `json:"scheduled"`
	ResponseRate float64 `json:"responseRate"`
}

type StageCountResponse struct {
	StageKey     string `json:"stageKey"`
	StageName    string `json:"stageName"`
	DisplayOrder int    `json:"displayOrder"`
	Scheduled    int    `json:"scheduled"`
	Completed    int    `json:"completed"`
	Responded    int    `json:"responded"`
}
