// Package domain holds the lead entity and its status rules.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the sales status of a lead.
type Status string

const (
	StatusWarm         Status = "WARM"
	StatusHot          Status = "HOT"
	StatusCustomer     Status = "CUSTOMER"
	StatusExit         Status = "EXIT"
	StatusCold         Status = "COLD"
	StatusCrossSelling Status = "CROSS_SELLING"
)

// ParseStatus normalizes a status value. CONVERTED is accepted as an alias
// of CUSTOMER.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch Status(normalized) {
	case StatusWarm, StatusHot, StatusCustomer, StatusExit, StatusCold, StatusCrossSelling:
		return Status(normalized), nil
	case "CONVERTED":
		return StatusCustomer, nil
	default:
		return "", Validation("unknown lead status %q", raw)
	}
}

// RequiresOutreach reports whether leads in this status are worked through
// follow-ups.
func (s Status) RequiresOutreach() bool {
	return s == StatusWarm || s == StatusHot
}

// IsClosing reports whether the status records a won deal.
func (s Status) IsClosing() bool {
	return s == StatusCustomer || s == StatusCrossSelling
}

// Lead is a prospective or existing customer owned by one marketing user.
type Lead struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	BranchID         uuid.UUID
	Name             string
	Phone            string
	Email            *string
	Address          *string
	Status           Status
	PotentialValue   int64
	ClosingReason    *string
	NonClosingReason *string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WithStatus returns a copy moved to next. reason lands in the closing or the
// non-closing reason depending on where the lead goes; WARM and HOT clear
// both.
func (l Lead) WithStatus(next Status, reason *string) Lead {
	l.Status = next
	switch {
	case next.IsClosing():
		l.ClosingReason = reason
		l.NonClosingReason = nil
	case next == StatusExit || next == StatusCold:
		l.NonClosingReason = reason
		l.ClosingReason = nil
	default:
		l.ClosingReason = nil
		l.NonClosingReason = nil
	}
	return l
}

// NormalizeName collapses whitespace and title-cases a person's name.
// Casers keep state, so each call builds its own.
func NormalizeName(name string) string {
	return cases.Title(language.Indonesian).String(strings.Join(strings.Fields(name), " "))
}
