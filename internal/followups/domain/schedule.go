package domain

import (
	"strings"
	"time"
)

// SlotPolicy decides when system-created follow-ups are due. All wall-clock
// reasoning happens in Location; results are UTC instants.
type SlotPolicy struct {
	Location           *time.Location
	SlotHour           int
	SuccessorDelayDays int
}

func (p SlotPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// NextBusinessSlot returns the first Monday to Friday slot strictly after
// the given instant.
func (p SlotPolicy) NextBusinessSlot(after time.Time) time.Time {
	loc := p.location()
	local := after.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), p.SlotHour, 0, 0, 0, loc)
	if !candidate.After(after) {
		candidate = addDays(candidate, 1, p.SlotHour, loc)
	}
	return skipWeekend(candidate, p.SlotHour, loc).UTC()
}

// SuccessorAt returns when the auto-scheduled successor of a record completed
// at completedAt is due: SuccessorDelayDays later at the slot hour, moved off
// weekends, and never at or before completion.
func (p SlotPolicy) SuccessorAt(completedAt time.Time) time.Time {
	loc := p.location()
	local := completedAt.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day()+p.SuccessorDelayDays, p.SlotHour, 0, 0, 0, loc)
	candidate = skipWeekend(candidate, p.SlotHour, loc)
	if !candidate.After(completedAt) {
		return p.NextBusinessSlot(completedAt)
	}
	return candidate.UTC()
}

// DayBounds returns [start, end) of the local calendar day containing t.
func (p SlotPolicy) DayBounds(t time.Time) (time.Time, time.Time) {
	loc := p.location()
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return start.UTC(), end.UTC()
}

// DateRangeBounds converts an inclusive local date range into [start, end).
func (p SlotPolicy) DateRangeBounds(startDate, endDate time.Time) (TimeRange, error) {
	start, _ := p.DayBounds(startDate)
	_, end := p.DayBounds(endDate)
	if !end.After(start) {
		return TimeRange{}, Validation("end date must not be before start date")
	}
	return TimeRange{From: start, To: end}, nil
}

// ParseDate reads a YYYY-MM-DD date in Location.
func (p SlotPolicy) ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), p.location())
	if err != nil {
		return time.Time{}, Validation("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseWallClock reads local wall-clock input and returns the UTC instant.
// Input carrying an explicit offset (RFC 3339) keeps that offset.
func (p SlotPolicy) ParseWallClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, value, p.location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Validation("invalid date time %q, expected YYYY-MM-DDTHH:MM", value)
}

func addDays(t time.Time, days, hour int, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, hour, 0, 0, 0, loc)
}

func skipWeekend(t time.Time, hour int, loc *time.Location) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return addDays(t, 2, hour, loc)
	case time.Sunday:
		return addDays(t, 1, hour, loc)
	}
	return t
}
