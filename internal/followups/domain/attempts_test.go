package domain

import (
	"errors"
	"testing"
	"time"

	"sales_crm_backend/platform/apperr"
)

func TestDerivedAttemptCounters(t *testing.T) {
	// every combination of the three flags
	for mask := 0; mask < 1<<MaxSubAttempts; mask++ {
		var rec FollowUp
		wantCount := 0
		wantNext := 0
		for i := 0; i < MaxSubAttempts; i++ {
			if mask&(1<<i) != 0 {
				rec.Slots[i].Completed = true
				wantCount++
			} else if wantNext == 0 {
				wantNext = i + 1
			}
		}

		if got := rec.CompletedAttempts(); got != wantCount {
			t.Fatalf("mask %03b: CompletedAttempts() = %d, want %d", mask, got, wantCount)
		}
		next := rec.NextAttemptNumber()
		switch {
		case wantNext == 0 && next != nil:
			t.Fatalf("mask %03b: NextAttemptNumber() = %d, want nil", mask, *next)
		case wantNext != 0 && (next == nil || *next != wantNext):
			t.Fatalf("mask %03b: NextAttemptNumber() = %v, want %d", mask, next, wantNext)
		}
	}
}

func TestMarkAndUnmarkAttempt(t *testing.T) {
	var rec FollowUp
	at := time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC)

	if err := rec.MarkAttempt(1, at); err != nil {
		t.Fatalf("MarkAttempt(1): %v", err)
	}
	if rec.CompletedAttempts() != 1 || *rec.NextAttemptNumber() != 2 {
		t.Fatalf("unexpected counters after first mark: %d", rec.CompletedAttempts())
	}
	if !rec.Slots[0].CompletedAt.Equal(at) {
		t.Fatalf("completed_at not stamped")
	}

	if err := rec.MarkAttempt(1, at); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error on double mark, got %v", err)
	}
	if err := rec.MarkAttempt(4, at); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for slot 4, got %v", err)
	}

	if err := rec.UnmarkAttempt(1); err != nil {
		t.Fatalf("UnmarkAttempt(1): %v", err)
	}
	if rec.CompletedAttempts() != 0 || rec.Slots[0].CompletedAt != nil {
		t.Fatal("slot 1 should be cleared")
	}
	if err := rec.UnmarkAttempt(2); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error unmarking empty slot, got %v", err)
	}
}

func TestResolveAttemptNumber(t *testing.T) {
	var rec FollowUp
	rec.Slots[0].Completed = true

	n, err := rec.ResolveAttemptNumber(nil)
	if err != nil || n != 2 {
		t.Fatalf("expected next free slot 2, got %d %v", n, err)
	}

	three := 3
	if n, err = rec.ResolveAttemptNumber(&three); err != nil || n != 3 {
		t.Fatalf("expected explicit slot 3, got %d %v", n, err)
	}

	for i := range rec.Slots {
		rec.Slots[i].Completed = true
	}
	if _, err := rec.ResolveAttemptNumber(nil); err == nil {
		t.Fatal("expected error when no slot is free")
	}
}

func TestIsExhausted(t *testing.T) {
	var rec FollowUp
	for i := range rec.Slots {
		rec.Slots[i].Completed = true
	}
	if !IsExhausted(rec, false, false) {
		t.Fatal("three unanswered attempts without progression must be exhausted")
	}
	if IsExhausted(rec, true, false) || IsExhausted(rec, false, true) {
		t.Fatal("a response or a stage progression is never exhausted")
	}
	rec.Slots[2].Completed = false
	if IsExhausted(rec, false, false) {
		t.Fatal("a free slot is never exhausted")
	}
}

func TestErrorSentinelsSurviveWrapping(t *testing.T) {
	if !errors.Is(AlreadyCompleted(), ErrAlreadyCompleted) {
		t.Fatal("AlreadyCompleted must match ErrAlreadyCompleted")
	}
	if apperr.GetKind(Unauthorized()) != apperr.KindForbidden {
		t.Fatal("Unauthorized must map to forbidden")
	}
	if apperr.GetKind(InvalidStage("x")) != apperr.KindNotFound {
		t.Fatal("InvalidStage must map to not found")
	}
	if !errors.Is(StageInUse("x"), ErrStageInUse) {
		t.Fatal("StageInUse must match ErrStageInUse")
	}
}
