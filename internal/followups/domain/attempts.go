package domain

import "time"

// CompletedAttempts counts the marked sub-attempt slots.
func (f FollowUp) CompletedAttempts() int {
	count := 0
	for _, slot := range f.Slots {
		if slot.Completed {
			count++
		}
	}
	return count
}

// NextAttemptNumber is the lowest unmarked slot (1-based), nil when all three
// are marked.
func (f FollowUp) NextAttemptNumber() *int {
	for i, slot := range f.Slots {
		if !slot.Completed {
			n := i + 1
			return &n
		}
	}
	return nil
}

// AllAttemptsDone reports whether every sub-attempt is marked.
func (f FollowUp) AllAttemptsDone() bool {
	return f.NextAttemptNumber() == nil
}

// ValidAttemptNumber reports whether n addresses a slot.
func ValidAttemptNumber(n int) bool {
	return n >= 1 && n <= MaxSubAttempts
}

// ResolveAttemptNumber returns the slot a mark request targets: the explicit
// number, or the next free slot when number is nil.
func (f FollowUp) ResolveAttemptNumber(number *int) (int, error) {
	if number == nil {
		next := f.NextAttemptNumber()
		if next == nil {
			return 0, Validation("all %d attempts are already marked", MaxSubAttempts)
		}
		return *next, nil
	}
	if !ValidAttemptNumber(*number) {
		return 0, Validation("attempt number must be between 1 and %d", MaxSubAttempts)
	}
	return *number, nil
}

// MarkAttempt marks slot n at the given instant.
func (f *FollowUp) MarkAttempt(n int, at time.Time) error {
	if !ValidAttemptNumber(n) {
		return Validation("attempt number must be between 1 and %d", MaxSubAttempts)
	}
	slot := &f.Slots[n-1]
	if slot.Completed {
		return Validation("attempt %d is already marked", n)
	}
	ts := at.UTC()
	slot.Completed = true
	slot.CompletedAt = &ts
	return nil
}

// UnmarkAttempt clears slot n.
func (f *FollowUp) UnmarkAttempt(n int) error {
	if !ValidAttemptNumber(n) {
		return Validation("attempt number must be between 1 and %d", MaxSubAttempts)
	}
	slot := &f.Slots[n-1]
	if !slot.Completed {
		return Validation("attempt %d is not marked", n)
	}
	slot.Completed = false
	slot.CompletedAt = nil
	return nil
}
