// Package service orchestrates domain operations across storage and
// messaging. Handlers call into it; it owns authorization and the
// best-effort event publishing that feeds the audit worker.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/amqp"
	"tally/internal/core"
	applog "tally/internal/log"
)

// TransactionStore is the persistence surface the service needs.
// *storage.Store satisfies it; tests substitute an in-memory fake.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, t core.Transaction) error
	FindTransaction(ctx context.Context, id uuid.UUID) (*core.Transaction, error)
	ListTransactionsByOwner(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// EventPublisher emits transaction change events. *amqp.Client
// satisfies it, including as a nil pointer when messaging is disabled.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// CreateInput is the caller-supplied part of a new transaction.
type CreateInput struct {
	Kind        core.Kind
	Amount      decimal.Decimal
	Category    string
	Description string
	OccurredAt  time.Time
}

// UpdateInput is a partial patch. Nil fields were omitted by the caller
// and keep their stored value; a non-nil pointer always applies, so an
// explicit zero or empty string is an attempted update and is validated
// like any other value.
type UpdateInput struct {
	Kind        *core.Kind
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	OccurredAt  *time.Time
}

// TransactionService implements the owner-scoped transaction
// operations and their aggregations.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	logger    *applog.Logger
}

func NewTransactionService(store TransactionStore, publisher EventPublisher, logger *applog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentTransaction),
	}
}

// Create validates and persists a new transaction owned by ownerID.
func (s *TransactionService) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*core.Transaction, error) {
	t := core.Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		OccurredAt:  in.OccurredAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.InsertTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldTransactionID, t.ID.String(),
		applog.FieldUserID, ownerID.String(),
		applog.FieldKind, string(t.Kind),
		applog.FieldAmount, t.Amount.String())

	s.publishEvent(ctx, t.ID, ownerID, amqp.ActionCreated)
	return &t, nil
}

// List returns every transaction owned by ownerID, newest first.
func (s *TransactionService) List(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Update applies a partial patch to an owned transaction. A missing
// record reports core.ErrNotFound before ownership is considered; a
// record owned by someone else reports core.ErrForbidden.
func (s *TransactionService) Update(ctx context.Context, callerID, id uuid.UUID, in UpdateInput) (*core.Transaction, error) {
	existing, err := s.store.FindTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !core.Authorized(callerID, *existing) {
		return nil, core.ErrForbidden
	}

	patched := *existing
	if in.Kind != nil {
		patched.Kind = *in.Kind
	}
	if in.Amount != nil {
		patched.Amount = *in.Amount
	}
	if in.Category != nil {
		patched.Category = *in.Category
	}
	if in.Description != nil {
		patched.Description = *in.Description
	}
	if in.OccurredAt != nil {
		patched.OccurredAt = *in.OccurredAt
	}
	if err := patched.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTransaction(ctx, patched); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldTransactionID, id.String(),
		applog.FieldUserID, callerID.String())

	s.publishEvent(ctx, id, callerID, amqp.ActionUpdated)
	return &patched, nil
}

// Delete removes an owned transaction, with the same not-found before
// forbidden ordering as Update.
func (s *TransactionService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	existing, err := s.store.FindTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !core.Authorized(callerID, *existing) {
		return core.ErrForbidden
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id.String(),
		applog.FieldUserID, callerID.String())

	s.publishEvent(ctx, id, callerID, amqp.ActionDeleted)
	return nil
}

// Summary computes income, expense and balance totals over the owned
// set.
func (s *TransactionService) Summary(ctx context.Context, ownerID uuid.UUID) (core.Summary, error) {
	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions for summary: %w", err)
	}
	return core.Summarize(txs), nil
}

// CategoryBreakdown totals expenses per category for chart rendering.
func (s *TransactionService) CategoryBreakdown(ctx context.Context, ownerID uuid.UUID) ([]core.CategoryTotal, error) {
	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for breakdown: %w", err)
	}
	return core.CategoryTotals(txs), nil
}

// MonthlySeries buckets the owned set into the most recent populated
// months for chart rendering.
func (s *TransactionService) MonthlySeries(ctx context.Context, ownerID uuid.UUID) ([]core.MonthPoint, error) {
	txs, err := s.store.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load transactions for series: %w", err)
	}
	return core.MonthlySeries(txs), nil
}

// publishEvent is best effort. The write already succeeded, so a
// publish failure is logged and the request still succeeds.
func (s *TransactionService) publishEvent(ctx context.Context, txID, ownerID uuid.UUID, action string) {
	if s.publisher == nil {
		return
	}
	event := amqp.NewTransactionEvent(txID, ownerID, action)
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction event",
			applog.FieldError, err,
			applog.FieldTransactionID, txID.String(),
			applog.FieldAction, action)
	}
}
