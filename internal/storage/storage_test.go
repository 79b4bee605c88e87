package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tally-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store) core.User {
	t.Helper()
	u := core.User{
		ID:           uuid.New(),
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := store.InsertUser(context.Background(), u); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}
	return u
}

func newTx(owner uuid.UUID, kind core.Kind, amount string, occurred time.Time) core.Transaction {
	return core.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		Kind:        kind,
		Amount:      decimal.RequireFromString(amount),
		Category:    "Food & Dining",
		Description: "lunch",
		OccurredAt:  occurred,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, store)

	got, err := store.FindUserByEmail(ctx, "ASHA@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.Name != u.Name || got.PasswordHash != u.PasswordHash {
		t.Errorf("FindUserByEmail = %+v, want %+v", got, u)
	}

	byID, err := store.FindUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindUserByID: %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("FindUserByID email = %q, want %q", byID.Email, u.Email)
	}

	if _, err := store.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, store)

	occurred := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tx := newTx(u.ID, core.KindExpense, "12.34", occurred)
	if err := store.InsertTransaction(ctx, tx); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	got, err := store.FindTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("FindTransaction: %v", err)
	}
	if got.OwnerID != u.ID || got.Kind != core.KindExpense || !got.Amount.Equal(tx.Amount) {
		t.Errorf("FindTransaction = %+v", got)
	}
	if !got.OccurredAt.Equal(occurred) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt, occurred)
	}
	if got.Description != "lunch" {
		t.Errorf("Description = %q, want lunch", got.Description)
	}

	got.Amount = decimal.RequireFromString("20.00")
	got.Description = ""
	if err := store.UpdateTransaction(ctx, *got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	updated, err := store.FindTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("FindTransaction after update: %v", err)
	}
	if !updated.Amount.Equal(decimal.RequireFromString("20.00")) || updated.Description != "" {
		t.Errorf("after update = %+v", updated)
	}

	if err := store.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := store.FindTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("after delete: got %v, want ErrNotFound", err)
	}
	if err := store.DeleteTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}
}

func TestListTransactionsByOwner_OrderAndScope(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, store)

	other := core.User{
		ID:           uuid.New(),
		Name:         "Ben",
		Email:        "ben@example.com",
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.InsertUser(ctx, other); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}

	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, tx := range []core.Transaction{
		newTx(owner.ID, core.KindIncome, "1000", jan),
		newTx(owner.ID, core.KindExpense, "300", mar),
		newTx(owner.ID, core.KindExpense, "200", feb),
		newTx(other.ID, core.KindExpense, "999", feb),
	} {
		if err := store.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("InsertTransaction: %v", err)
		}
	}

	got, err := store.ListTransactionsByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListTransactionsByOwner: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("list returned %d transactions, want 3 (owner-scoped)", len(got))
	}
	for i, want := range []time.Time{mar, feb, jan} {
		if !got[i].OccurredAt.Equal(want) {
			t.Errorf("position %d occurred at %v, want %v", i, got[i].OccurredAt, want)
		}
	}
	for _, tx := range got {
		if tx.OwnerID != owner.ID {
			t.Errorf("foreign transaction leaked into list: %+v", tx)
		}
	}
}

func TestAuditLog(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := uuid.New()
	txID := uuid.New()

	for _, action := range []string{"created", "updated", "deleted"} {
		err := store.InsertAuditEntry(ctx, AuditEntry{
			TransactionID: txID,
			OwnerID:       owner,
			Action:        action,
			EventAt:       time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("InsertAuditEntry(%s): %v", action, err)
		}
	}

	entries, err := store.ListAuditByOwner(ctx, owner, 10)
	if err != nil {
		t.Fatalf("ListAuditByOwner: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Action != "deleted" || entries[2].Action != "created" {
		t.Errorf("order = %s, %s, %s", entries[0].Action, entries[1].Action, entries[2].Action)
	}
}
