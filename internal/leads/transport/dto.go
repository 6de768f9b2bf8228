package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateLeadRequest struct {
	Name           string     `json:"name" validate:"required,min=1,max=150"`
	Phone          string     `json:"phone" validate:"required,min=5,max=20"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email"`
	Address        *string    `json:"address,omitempty" validate:"omitempty,max=500"`
	Status         string     `json:"status,omitempty" validate:"omitempty,max=20"`
	PotentialValue int64      `json:"potentialValue" validate:"min=0"`
	BranchID       *uuid.UUID `json:"branchId,omitempty"`
}

type UpdateLeadStatusRequest struct {
	Status string  `json:"status" validate:"required,max=20"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type ListLeadsRequest struct {
	Status     string `form:"status" validate:"max=20"`
	ActiveOnly bool   `form:"active"`
}

// Response DTOs
type LeadResponse struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"ownerId"`
	BranchID         uuid.UUID `json:"branchId"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            *string   `json:"email,omitempty"`
	Address          *string   `json:"address,omitempty"`
	Status           string    `json:"status"`
	PotentialValue   int64     `json:"potentialValue"`
	ClosingReason    *string   `json:"closingReason,omitempty"`
	NonClosingReason *string   `json:"nonClosingReason,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}
