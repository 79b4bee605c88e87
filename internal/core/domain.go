package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind discriminates income from expense transactions.
	Kind string

	// Transaction is a single income or expense record owned by one user.
	// ID and OwnerID are assigned at creation and never change; there is
	// no transfer-of-ownership operation.
	Transaction struct {
		ID          uuid.UUID
		OwnerID     uuid.UUID
		Kind        Kind
		Amount      decimal.Decimal
		Category    string
		Description string
		OccurredAt  time.Time // business date, distinct from CreatedAt
		CreatedAt   time.Time
	}

	// User is an authenticated account. Email is stored lowercased and is
	// unique across users.
	User struct {
		ID           uuid.UUID
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Validate checks a fully populated transaction before it is persisted.
// All field problems are collected into a single ValidationError.
func (t Transaction) Validate() error {
	verr := NewValidationError()
	if !t.Kind.Valid() {
		verr.Add("kind", "kind must be income or expense")
	}
	if err := ValidateAmount(t.Amount); err != nil {
		verr.Add("amount", "amount must be a positive number")
	}
	if strings.TrimSpace(t.Category) == "" {
		verr.Add("category", "category is required")
	}
	if t.OccurredAt.IsZero() {
		verr.Add("occurredAt", "valid date is required")
	}
	return verr.ErrOrNil()
}

// Authorized is the single access-control rule of the system: only the
// owner may act on a transaction. It is a pure predicate over opaque
// identifiers; callers translate a false result into ErrForbidden.
func Authorized(callerID uuid.UUID, t Transaction) bool {
	return t.OwnerID == callerID
}
