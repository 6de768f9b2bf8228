package domain

import "math"

// Statistics are the aggregate counters over a scope and optional range.
type Statistics struct {
	Total        int
	Completed    int
	NoResponse   int
	Scheduled    int
	ResponseRate float64
}

// NewStatistics derives the response rate from the raw counters.
func NewStatistics(total, completed, noResponse, scheduled int) Statistics {
	return Statistics{
		Total:        total,
		Completed:    completed,
		NoResponse:   noResponse,
		Scheduled:    scheduled,
		ResponseRate: ResponseRate(total, completed, noResponse),
	}
}

// ResponseRate is (completed - noResponse) / total * 100 rounded to one
// decimal, and 0 for an empty population.
func ResponseRate(total, completed, noResponse int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed-noResponse) / float64(total) * 100
	return math.Round(rate*10) / 10
}

// StageCount is one row of the per-stage breakdown.
type StageCount struct {
	StageKey     string
	StageName    string
	DisplayOrder int
	Scheduled    int
	Completed    int
	Responded    int
}

// Dashboard holds the "as of today" buckets.
type Dashboard struct {
	Today      []FollowUpView
	Overdue    []FollowUpView
	Successful []FollowUpView
}
