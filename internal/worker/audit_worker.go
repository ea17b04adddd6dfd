package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finch/internal/events"
	"finch/internal/storage"
)

// AuditWorker appends consumed settings events to the audit log.
type AuditWorker struct {
	audit storage.AuditWriter
}

func NewAuditWorker(audit storage.AuditWriter) *AuditWorker {
	return &AuditWorker{audit: audit}
}

// HandleSettingsEvent processes a single settings event from the queue.
// Returning an error requeues the delivery.
func (w *AuditWorker) HandleSettingsEvent(ctx context.Context, event *events.SettingsEvent) error {
	if event.UserID == 0 || event.Action == "" || event.Entity == "" {
		// Malformed producer output; requeueing would loop forever.
		slog.WarnContext(ctx, "Dropping incomplete settings event",
			"user_id", event.UserID,
			"action", event.Action,
			"entity", event.Entity)
		return nil
	}

	if err := w.audit.AppendAudit(ctx, event.UserID, event.Action, event.Entity, event.OccurredAt); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	slog.InfoContext(ctx, "Settings event recorded",
		"user_id", event.UserID,
		"action", event.Action,
		"entity", event.Entity)
	return nil
}
