// Package reports holds the read-only derivations over a ledger
// snapshot: period bucketing, earned/spent totals and per-category
// grouping. Every function is pure.
package reports

import (
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"github.com/laurenhquan/piggypal/internal/entity/period"
	"github.com/laurenhquan/piggypal/internal/entity/transaction"
)

// Weeks start on Monday so week buckets follow ISO 8601 numbering and
// do not shift at year boundaries.
var calendar = &now.Config{WeekStartDay: time.Monday}

// Bounds returns the inclusive start and end of the period bucket the
// reference date falls into.
func Bounds(p period.Period, ref time.Time) (time.Time, time.Time) {
	n := calendar.With(ref)
	switch p {
	case period.Daily:
		return n.BeginningOfDay(), n.EndOfDay()
	case period.Weekly:
		return n.BeginningOfWeek(), n.EndOfWeek()
	case period.Yearly:
		return n.BeginningOfYear(), n.EndOfYear()
	default:
		return n.BeginningOfMonth(), n.EndOfMonth()
	}
}

// InPeriod keeps the entries whose date falls in the same bucket as ref.
func InPeriod(txs []transaction.Transaction, p period.Period, ref time.Time) []transaction.Transaction {
	begin, end := Bounds(p, ref)
	res := make([]transaction.Transaction, 0)
	for _, t := range txs {
		if !t.Date.Before(begin) && !t.Date.After(end) {
			res = append(res, t)
		}
	}
	return res
}

// TotalEarned sums the positive amounts in the bucket.
func TotalEarned(txs []transaction.Transaction, p period.Period, ref time.Time) decimal.Decimal {
	return totalSigned(txs, p, ref, true)
}

// TotalSpent sums the negative amounts in the bucket. The result is
// zero or negative.
func TotalSpent(txs []transaction.Transaction, p period.Period, ref time.Time) decimal.Decimal {
	return totalSigned(txs, p, ref, false)
}

func totalSigned(txs []transaction.Transaction, p period.Period, ref time.Time, positive bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range InPeriod(txs, p, ref) {
		if t.Amount.IsPositive() == positive && !t.Amount.IsZero() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func CurrentBalance(txs []transaction.Transaction, p period.Period, ref time.Time) decimal.Decimal {
	return TotalEarned(txs, p, ref).Add(TotalSpent(txs, p, ref))
}

// ByCategory maps each category to the absolute value of its balance
// within the bucket. Categories that net out to zero are dropped.
func ByCategory(txs []transaction.Transaction, p period.Period, ref time.Time) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, t := range InPeriod(txs, p, ref) {
		sums[t.Category] = sums[t.Category].Add(t.Amount)
	}

	res := make(map[string]decimal.Decimal, len(sums))
	for category, sum := range sums {
		if abs := sum.Abs(); abs.IsPositive() {
			res[category] = abs
		}
	}
	return res
}

// OverBudget reports how far spending in the bucket exceeds the limit.
// A non-positive limit means no budget is set and never triggers.
func OverBudget(txs []transaction.Transaction, p period.Period, ref time.Time, limit decimal.Decimal) (decimal.Decimal, bool) {
	if !limit.IsPositive() {
		return decimal.Zero, false
	}
	spent := TotalSpent(txs, p, ref).Abs()
	if spent.GreaterThan(limit) {
		return spent.Sub(limit), true
	}
	return decimal.Zero, false
}
