package cashbox

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LedgerLine is a movement annotated with the cumulative drawer balance
// at the point the movement took effect.
type LedgerLine struct {
	Movement Movement        `json:"movement"`
	Balance  decimal.Decimal `json:"balance"`
}

// Ledger is the derived view of a drawer: its movements in ascending
// timestamp order, each carrying the running balance, plus totals.
// The balance is never stored — it is recomputed on every read so that
// movement insertions and deletions can never leave a stale figure.
type Ledger struct {
	Lines        []LedgerLine
	TotalInflow  decimal.Decimal
	TotalOutflow decimal.Decimal
	FinalBalance decimal.Decimal
}

// ComputeLedger derives the running balance of a drawer from its opening
// balance and movements. Movements are scanned in ascending timestamp
// order (ties broken by creation time so same-instant entries have a
// stable order); inflows add, outflows subtract.
func ComputeLedger(openingBalance decimal.Decimal, movements []Movement) Ledger {
	sorted := make([]Movement, len(movements))
	copy(sorted, movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	ledger := Ledger{
		Lines:        make([]LedgerLine, 0, len(sorted)),
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
	}

	balance := openingBalance
	for _, m := range sorted {
		switch m.Kind {
		case MovementInflow:
			balance = balance.Add(m.Amount)
			ledger.TotalInflow = ledger.TotalInflow.Add(m.Amount)
		case MovementOutflow:
			balance = balance.Sub(m.Amount)
			ledger.TotalOutflow = ledger.TotalOutflow.Add(m.Amount)
		}
		ledger.Lines = append(ledger.Lines, LedgerLine{Movement: m, Balance: balance})
	}

	ledger.FinalBalance = balance
	return ledger
}

// Descending returns the ledger lines most-recent first, the order the
// drawer summary presents them in.
func (l Ledger) Descending() []LedgerLine {
	out := make([]LedgerLine, len(l.Lines))
	for i, line := range l.Lines {
		out[len(l.Lines)-1-i] = line
	}
	return out
}
