package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

func TestEventRoundTripThroughWireFormat(t *testing.T) {
	in := domain.LifecycleEvent{
		ID:            "ev-1",
		DocumentID:    "doc-1",
		Action:        domain.ActionSubmitForReview,
		FromStatus:    domain.StatusInTranslation,
		ToStatus:      domain.StatusPendingReview,
		ActorID:       "w-1",
		VersionNumber: 5,
		OccurredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := encodeEvent(in)
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	out, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if out != in {
		t.Fatalf("decoded event mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestDecodeEventRejectsIncompletePayloads(t *testing.T) {
	for _, raw := range []string{`not json`, `{"id":"ev-1"}`, `{"document_id":"doc-1"}`} {
		if _, err := decodeEvent([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestClassifyNATSError(t *testing.T) {
	if c := classifyNATSError(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("context cancellation must not retry or trip the breaker: %+v", c)
	}
	if c := classifyNATSError(nats.ErrConnectionClosed); !c.Retryable || !c.RecordFailure {
		t.Fatalf("closed connection must be retryable: %+v", c)
	}
	if c := classifyNATSError(errors.New("bad subject")); c.Retryable {
		t.Fatalf("unknown errors must not be retried: %+v", c)
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	err := wrapTemporaryIfNeeded(nats.ErrTimeout)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	plain := errors.New("bad subject")
	if got := wrapTemporaryIfNeeded(plain); got != plain {
		t.Fatalf("non-retryable errors must pass through, got %v", got)
	}
}
