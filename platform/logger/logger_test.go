package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWithContextAddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, UserIDKey, "user-7")
	log.WithContext(ctx).Info("lead created")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"user_id":"user-7"`) {
		t.Fatalf("expected request and user ids in %s", out)
	}
}

func TestWithContextWithoutValuesKeepsLogger(t *testing.T) {
	log := Discard()
	if log.WithContext(context.Background()) != log {
		t.Fatal("expected the same logger when ctx carries nothing")
	}
}

func TestDatabaseError(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("production", &buf).DatabaseError("health_ping", errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, `"msg":"database_error"`) || !strings.Contains(out, `"operation":"health_ping"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}
