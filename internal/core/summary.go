package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// monthlySeriesCap limits the monthly series to the most recent
// populated months. Months without transactions do not count.
const monthlySeriesCap = 6

type (
	// Summary is the income/expense/balance aggregate over a user's full
	// transaction set.
	Summary struct {
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Balance      decimal.Decimal
	}

	// CategoryTotal is a per-category expense total, used for the
	// proportional (pie) visualization.
	CategoryTotal struct {
		Category string
		Total    decimal.Decimal
	}

	// MonthPoint is a per-calendar-month income/expense pair, used for
	// the trend (bar) visualization. Label is a display rendering of the
	// month key, e.g. "Jan 2024".
	MonthPoint struct {
		Label   string
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	monthKey struct {
		year  int
		month time.Month
	}
)

// Summarize computes totals over a transaction set. Balance is exactly
// TotalIncome minus TotalExpense; an empty input yields all zeros.
func Summarize(txs []Transaction) Summary {
	s := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range txs {
		switch t.Kind {
		case KindIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case KindExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// CategoryTotals groups expense transactions by category and sums each
// group, rounded to two decimal places. Income transactions are
// ignored. Output order is sorted by category name; consumers re-sort
// and color as needed.
func CategoryTotals(txs []Transaction) []CategoryTotal {
	byCategory := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Kind != KindExpense {
			continue
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for name, total := range byCategory {
		out = append(out, CategoryTotal{Category: name, Total: Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// MonthlySeries groups all transactions by calendar year-month of their
// business date and sums income and expense per month, ascending by
// month. Only the last 6 populated months are kept: months are counted
// by presence of data, not relative to the current date, and when more
// than 6 distinct months exist the earliest are dropped.
func MonthlySeries(txs []Transaction) []MonthPoint {
	type bucket struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}
	byMonth := make(map[monthKey]*bucket)
	for _, t := range txs {
		key := monthKey{year: t.OccurredAt.Year(), month: t.OccurredAt.Month()}
		b, ok := byMonth[key]
		if !ok {
			b = &bucket{}
			byMonth[key] = b
		}
		switch t.Kind {
		case KindIncome:
			b.income = b.income.Add(t.Amount)
		case KindExpense:
			b.expense = b.expense.Add(t.Amount)
		}
	}

	keys := make([]monthKey, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	if len(keys) > monthlySeriesCap {
		keys = keys[len(keys)-monthlySeriesCap:]
	}

	out := make([]MonthPoint, 0, len(keys))
	for _, k := range keys {
		b := byMonth[k]
		out = append(out, MonthPoint{
			Label:   k.label(),
			Income:  Round2(b.income),
			Expense: Round2(b.expense),
		})
	}
	return out
}

func (k monthKey) label() string {
	return time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}
