package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyCashPoint is one day of the cash evolution rollup: the drawer's
// totals for a calendar date derived from its movements.
type DailyCashPoint struct {
	Date    time.Time       `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// ConceptSpend is one row of the top-expense-concepts rollup.
type ConceptSpend struct {
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Count       int64           `json:"count"`
}

// Repository defines read-only reporting queries over the movement
// store. No write-path invariant depends on these; they are plain SQL
// aggregations over the same data shape the drawer summary reads.
type Repository interface {
	// DailyCashEvolution aggregates movements per drawer date in [from, to]
	DailyCashEvolution(ctx context.Context, from, to time.Time) ([]DailyCashPoint, error)

	// TopExpenseConcepts ranks expense descriptions by total spend in [from, to]
	TopExpenseConcepts(ctx context.Context, from, to time.Time, limit int) ([]ConceptSpend, error)
}
