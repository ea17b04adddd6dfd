package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"finch/internal/events"
	"finch/internal/storage/memory"
)

type failingAudit struct{ err error }

func (f failingAudit) AppendAudit(context.Context, int64, string, string, time.Time) error {
	return f.err
}

func TestHandleSettingsEvent(t *testing.T) {
	store := memory.New()
	w := NewAuditWorker(store)
	ctx := context.Background()

	event := events.NewSettingsEvent(7, events.ActionUpdate, events.EntityCurrency)
	if err := w.HandleSettingsEvent(ctx, event); err != nil {
		t.Fatalf("HandleSettingsEvent: %v", err)
	}
	if store.AuditSize() != 1 {
		t.Errorf("audit entries = %d, want 1", store.AuditSize())
	}
}

func TestHandleSettingsEventDropsIncomplete(t *testing.T) {
	store := memory.New()
	w := NewAuditWorker(store)

	// No user id: dropped without error so it is not requeued
	if err := w.HandleSettingsEvent(context.Background(), &events.SettingsEvent{Action: "update", Entity: "currency"}); err != nil {
		t.Fatalf("incomplete event = %v, want nil", err)
	}
	if store.AuditSize() != 0 {
		t.Errorf("audit entries = %d, want 0", store.AuditSize())
	}
}

func TestHandleSettingsEventPropagatesStorageError(t *testing.T) {
	boom := errors.New("disk full")
	w := NewAuditWorker(failingAudit{err: boom})

	event := events.NewSettingsEvent(7, events.ActionCreate, events.EntityAccount)
	if err := w.HandleSettingsEvent(context.Background(), event); !errors.Is(err, boom) {
		t.Errorf("HandleSettingsEvent = %v, want %v", err, boom)
	}
}
