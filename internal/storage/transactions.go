package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

const transactionColumns = "id, owner_id, kind, amount, category, description, occurred_at, created_at"

// InsertTransaction persists a new transaction record.
func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.OwnerID.String(), string(t.Kind), t.Amount.String(),
		t.Category, t.Description, t.OccurredAt.UTC(), t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// FindTransaction fetches a transaction by id regardless of owner.
// Returns core.ErrNotFound when the id does not exist.
func (s *Store) FindTransaction(ctx context.Context, id uuid.UUID) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id.String())
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

// ListTransactionsByOwner returns the full owned set, ordered by
// business date descending with a stable tiebreak. No pagination.
func (s *Store) ListTransactionsByOwner(ctx context.Context, ownerID uuid.UUID) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE owner_id = ?
		 ORDER BY occurred_at DESC, created_at DESC, id`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// UpdateTransaction rewrites the mutable fields of a record. Owner and
// creation time are immutable and never touched.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET kind = ?, amount = ?, category = ?, description = ?, occurred_at = ?
		 WHERE id = ?`,
		string(t.Kind), t.Amount.String(), t.Category, t.Description, t.OccurredAt.UTC(), t.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteTransaction permanently removes a record. There is no soft
// delete.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*core.Transaction, error) {
	var (
		id, ownerID, kind, amount string
		t                         core.Transaction
	)
	if err := row.Scan(&id, &ownerID, &kind, &amount, &t.Category, &t.Description, &t.OccurredAt, &t.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse transaction id: %w", err)
	}
	if t.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	t.Kind = core.Kind(kind)
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	t.OccurredAt = t.OccurredAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
