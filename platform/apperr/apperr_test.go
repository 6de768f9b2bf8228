package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetKindFollowsWrappedChain(t *testing.T) {
	base := Conflict("follow-up already completed")
	wrapped := fmt.Errorf("complete follow-up: %w", base)

	if got := GetKind(wrapped); got != KindConflict {
		t.Fatalf("expected KindConflict, got %v", got)
	}
	if !Is(wrapped, KindConflict) {
		t.Fatal("expected Is to match through fmt.Errorf wrapping")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected plain errors to be KindUnknown")
	}
}

func TestWrapKeepsSentinelReachable(t *testing.T) {
	sentinel := errors.New("stage in use")
	err := Wrap(KindConflict, "stage cannot be deleted", sentinel).WithCode("stage_in_use")

	if !errors.Is(err, sentinel) {
		t.Fatal("expected sentinel to be reachable through Unwrap")
	}
	if err.Code != "stage_in_use" {
		t.Fatalf("unexpected code %q", err.Code)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindValidation:   http.StatusUnprocessableEntity,
		KindBadRequest:   http.StatusBadRequest,
		KindConflict:     http.StatusConflict,
		KindForbidden:    http.StatusForbidden,
		KindUnauthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
		KindUnknown:      http.StatusBadRequest,
	}

	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Errorf("kind %v: got %d, want %d", kind, got, want)
		}
	}
}

func TestWithOpPrefixesErrorButNotMessage(t *testing.T) {
	err := Validation("next stage does not exist").WithOp("update follow-up stage").
		WithDetails(map[string]string{"nextStage": "missing"})

	if got := err.Error(); got != "update follow-up stage: next stage does not exist" {
		t.Fatalf("unexpected error string %q", got)
	}
	if err.Message != "next stage does not exist" {
		t.Fatalf("message must stay client safe, got %q", err.Message)
	}
	if err.Details == nil {
		t.Fatal("expected details to be kept")
	}
}
