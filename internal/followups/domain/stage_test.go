package domain

import (
	"testing"

	"sales_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func testCatalog() []Stage {
	return []Stage{
		{ID: uuid.New(), Key: "greeting", Name: "Greeting", DisplayOrder: 1, NextStageKey: strPtr("impression"), IsActive: true},
		{ID: uuid.New(), Key: "impression", Name: "Impression", DisplayOrder: 2, NextStageKey: strPtr("closing"), IsActive: true},
		{ID: uuid.New(), Key: "closing", Name: "Closing", DisplayOrder: 3, IsActive: true},
	}
}

func TestStageChainNext(t *testing.T) {
	chain := NewStageChain(testCatalog())

	next, err := chain.Next("greeting")
	if err != nil || next == nil || *next != "impression" {
		t.Fatalf("greeting -> %v, %v", next, err)
	}

	next, err = chain.Next("closing")
	if err != nil || next != nil {
		t.Fatalf("closing must end the chain, got %v %v", next, err)
	}

	if _, err := chain.Next("unknown"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unknown key must fail with invalid stage, got %v", err)
	}
}

func TestFirstActiveIgnoresInactiveAndUsesDisplayOrder(t *testing.T) {
	stages := testCatalog()
	stages[0].IsActive = false
	stages[2].DisplayOrder = 0

	first, ok := FirstActive(stages)
	if !ok || first.Key != "closing" {
		t.Fatalf("expected closing, got %q", first.Key)
	}

	if _, ok := FirstActive(nil); ok {
		t.Fatal("empty catalog has no first stage")
	}
}

func TestValidateStage(t *testing.T) {
	existing := testCatalog()

	cases := []struct {
		name  string
		stage Stage
		ok    bool
	}{
		{"new stage pointing to existing", Stage{ID: uuid.New(), Key: "negotiation", Name: "Negotiation", NextStageKey: strPtr("closing")}, true},
		{"end of chain", Stage{ID: uuid.New(), Key: "after_sales", Name: "After sales"}, true},
		{"self reference", Stage{ID: uuid.New(), Key: "loop", Name: "Loop", NextStageKey: strPtr("loop")}, false},
		{"dangling next", Stage{ID: uuid.New(), Key: "orphan", Name: "Orphan", NextStageKey: strPtr("missing")}, false},
		{"key collision", Stage{ID: uuid.New(), Key: "greeting", Name: "Greeting 2"}, false},
		{"bad key", Stage{ID: uuid.New(), Key: "Has Space", Name: "x"}, false},
		{"missing name", Stage{ID: uuid.New(), Key: "nameless"}, false},
		{"update keeps own key", Stage{ID: existing[0].ID, Key: "greeting", Name: "Hello"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStage(tc.stage, existing)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNextActiveStopsOnInactiveCycle(t *testing.T) {
	stages := []Stage{
		{Key: "a", NextStageKey: strPtr("b"), IsActive: true},
		{Key: "b", NextStageKey: strPtr("c")},
		{Key: "c", NextStageKey: strPtr("b")},
	}

	next, err := NextActive(stages, "a")
	if err != nil || next != nil {
		t.Fatalf("expected end of chain, got %v %v", next, err)
	}

	stages[2].IsActive = true
	next, err = NextActive(stages, "a")
	if err != nil || next == nil || *next != "c" {
		t.Fatalf("a -> %v, %v", next, err)
	}
}
