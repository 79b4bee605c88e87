package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one recorded transaction change, appended by the audit
// worker. EventAt is when the change happened; RecordedAt when the
// worker wrote it down.
type AuditEntry struct {
	ID            int64
	TransactionID uuid.UUID
	OwnerID       uuid.UUID
	Action        string
	EventAt       time.Time
	RecordedAt    time.Time
}

// InsertAuditEntry appends to the audit log.
func (s *Store) InsertAuditEntry(ctx context.Context, e AuditEntry) error {
	recordedAt := e.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (transaction_id, owner_id, action, event_at, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		e.TransactionID.String(), e.OwnerID.String(), e.Action, e.EventAt.UTC(), recordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAuditByOwner returns the most recent audit entries for a user,
// newest first.
func (s *Store) ListAuditByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transaction_id, owner_id, action, event_at, recorded_at
		 FROM audit_log WHERE owner_id = ?
		 ORDER BY id DESC LIMIT ?`, ownerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e            AuditEntry
			txID, owner  string
		)
		if err := rows.Scan(&e.ID, &txID, &owner, &e.Action, &e.EventAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.TransactionID, err = uuid.Parse(txID); err != nil {
			return nil, fmt.Errorf("parse audit transaction id: %w", err)
		}
		if e.OwnerID, err = uuid.Parse(owner); err != nil {
			return nil, fmt.Errorf("parse audit owner id: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return out, nil
}
