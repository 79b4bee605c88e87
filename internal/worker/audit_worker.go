// Package worker consumes transaction events and appends them to the
// audit log. It runs as a separate binary so a slow or unavailable
// database never backs up into request handling.
package worker

import (
	"context"
	"fmt"
	"time"

	"tally/internal/amqp"
	applog "tally/internal/log"
	"tally/internal/storage"
)

// AuditStore is the slice of storage the worker writes through.
type AuditStore interface {
	InsertAuditEntry(ctx context.Context, e storage.AuditEntry) error
}

// AuditWorker turns transaction events into audit log rows.
type AuditWorker struct {
	store  AuditStore
	logger *applog.Logger
}

func NewAuditWorker(store AuditStore, logger *applog.Logger) *AuditWorker {
	return &AuditWorker{
		store:  store,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent records a single transaction event. Returning an error
// makes the consumer requeue the delivery.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	entry := storage.AuditEntry{
		TransactionID: event.TransactionID,
		OwnerID:       event.OwnerID,
		Action:        event.Action,
		EventAt:       event.OccurredAt,
		RecordedAt:    time.Now().UTC(),
	}
	if err := w.store.InsertAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}

	w.logger.InfoContext(ctx, "audit entry recorded",
		applog.FieldOperation, applog.OpConsume,
		applog.FieldTransactionID, event.TransactionID.String(),
		applog.FieldAction, event.Action)

	return nil
}
