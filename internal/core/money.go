// Package core holds the transaction domain model and the pure
// aggregation engine. Monetary amounts use decimal arithmetic
// throughout so totals stay exact when rendered to two decimal places.
package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount reports an amount below MinAmount.
var ErrInvalidAmount = errors.New("amount must be at least 0.01")

// MinAmount is the smallest accepted transaction amount. Zero is
// rejected at the boundary even though storage would allow it.
var MinAmount = decimal.New(1, -2) // 0.01

// ValidateAmount enforces the positive-amount business rule applied on
// create and update input. Stored amounts are not re-validated on read.
func ValidateAmount(d decimal.Decimal) error {
	if d.LessThan(MinAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// Round2 rounds half away from zero to two decimal places, the
// precision used for every displayed total.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
