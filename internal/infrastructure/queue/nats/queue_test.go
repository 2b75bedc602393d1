package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestDecodeReason(t *testing.T) {
	tests := map[string]string{
		`{"reason":"corpus updated","requested_at":"2026-01-01T00:00:00Z"}`: "corpus updated",
		"nightly": "nightly",
		"":        "unspecified",
		`{}`:      `{}`,
	}
	for raw, want := range tests {
		if got := DecodeReason([]byte(raw)); got != want {
			t.Fatalf("DecodeReason(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestClassifyNATSError(t *testing.T) {
	if class := classifyNATSError(fmt.Errorf("publish: %w", nats.ErrNoServers)); !class.Retryable || !class.RecordFailure {
		t.Fatalf("no servers must be retryable: %+v", class)
	}
	if class := classifyNATSError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("cancellation must not be retried or recorded: %+v", class)
	}
	if class := classifyNATSError(errors.New("bad subject")); class.Retryable {
		t.Fatalf("unknown errors must not be retried: %+v", class)
	}
}
