package cashbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInflow(t *testing.T, drawerID uuid.UUID, amount float64, at time.Time) Movement {
	t.Helper()
	m, err := NewReceiptInflow(drawerID, uuid.New(), nil, "Recibo", decimal.NewFromFloat(amount), at)
	require.NoError(t, err)
	return *m
}

func mustOutflow(t *testing.T, drawerID uuid.UUID, amount float64, at time.Time) Movement {
	t.Helper()
	m, err := NewExpenseOutflow(drawerID, uuid.New(), nil, "Gasto", decimal.NewFromFloat(amount), at)
	require.NoError(t, err)
	return *m
}

func TestComputeLedger(t *testing.T) {
	drawerID := uuid.New()
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("running balance accumulates in timestamp order", func(t *testing.T) {
		movements := []Movement{
			mustOutflow(t, drawerID, 200, base.Add(2*time.Hour)),
			mustInflow(t, drawerID, 300, base),
			mustInflow(t, drawerID, 200, base.Add(time.Hour)),
		}

		ledger := ComputeLedger(decimal.NewFromInt(1000), movements)

		require.Len(t, ledger.Lines, 3)
		assert.Equal(t, "1300", ledger.Lines[0].Balance.String())
		assert.Equal(t, "1500", ledger.Lines[1].Balance.String())
		assert.Equal(t, "1300", ledger.Lines[2].Balance.String())
		assert.Equal(t, "500", ledger.TotalInflow.String())
		assert.Equal(t, "200", ledger.TotalOutflow.String())
		assert.Equal(t, "1300", ledger.FinalBalance.String())
	})

	t.Run("result is independent of insertion order", func(t *testing.T) {
		a := mustInflow(t, drawerID, 300, base)
		b := mustInflow(t, drawerID, 200, base.Add(time.Hour))
		c := mustOutflow(t, drawerID, 150, base.Add(2*time.Hour))

		forward := ComputeLedger(decimal.NewFromInt(1000), []Movement{a, b, c})
		shuffled := ComputeLedger(decimal.NewFromInt(1000), []Movement{c, a, b})

		require.Equal(t, len(forward.Lines), len(shuffled.Lines))
		for i := range forward.Lines {
			assert.True(t, forward.Lines[i].Balance.Equal(shuffled.Lines[i].Balance))
			assert.Equal(t, forward.Lines[i].Movement.ID, shuffled.Lines[i].Movement.ID)
		}
		assert.True(t, forward.FinalBalance.Equal(shuffled.FinalBalance))
	})

	t.Run("opening balance only when no movements", func(t *testing.T) {
		ledger := ComputeLedger(decimal.NewFromFloat(1000.00), nil)
		assert.Empty(t, ledger.Lines)
		assert.Equal(t, "1000.00", ledger.FinalBalance.StringFixed(2))
	})

	t.Run("single receipt split across two methods", func(t *testing.T) {
		// A $500 receipt paid $300 cash + $200 transfer against a
		// drawer opened with $1000.
		receiptID := uuid.New()
		cash, err := NewReceiptInflow(drawerID, receiptID, nil, "Recibo 1", decimal.NewFromInt(300), base)
		require.NoError(t, err)
		transfer, err := NewReceiptInflow(drawerID, receiptID, nil, "Recibo 1", decimal.NewFromInt(200), base)
		require.NoError(t, err)

		ledger := ComputeLedger(decimal.NewFromInt(1000), []Movement{*cash, *transfer})

		assert.Equal(t, "500.00", ledger.TotalInflow.StringFixed(2))
		assert.Equal(t, "0.00", ledger.TotalOutflow.StringFixed(2))
		assert.Equal(t, "1500.00", ledger.FinalBalance.StringFixed(2))
	})
}

func TestLedgerDescending(t *testing.T) {
	drawerID := uuid.New()
	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	ledger := ComputeLedger(decimal.Zero, []Movement{
		mustInflow(t, drawerID, 100, base),
		mustInflow(t, drawerID, 50, base.Add(time.Hour)),
	})

	desc := ledger.Descending()
	require.Len(t, desc, 2)
	assert.True(t, desc[0].Movement.OccurredAt.After(desc[1].Movement.OccurredAt))
	// Original ascending slice untouched.
	assert.True(t, ledger.Lines[0].Movement.OccurredAt.Before(ledger.Lines[1].Movement.OccurredAt))
}

func TestMovementConstructors(t *testing.T) {
	drawerID := uuid.New()

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := NewReceiptInflow(drawerID, uuid.New(), nil, "x", decimal.Zero, time.Now())
		assert.Error(t, err)
		_, err = NewExpenseOutflow(drawerID, uuid.New(), nil, "x", decimal.NewFromInt(-5), time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects missing drawer", func(t *testing.T) {
		_, err := NewReceiptInflow(uuid.Nil, uuid.New(), nil, "x", decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects missing document reference", func(t *testing.T) {
		_, err := NewReceiptInflow(drawerID, uuid.Nil, nil, "x", decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)
		_, err = NewExpenseOutflow(drawerID, uuid.Nil, nil, "x", decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)
	})

	t.Run("signed amounts", func(t *testing.T) {
		in, err := NewManualMovement(drawerID, MovementInflow, "ajuste", decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)
		out, err := NewManualMovement(drawerID, MovementOutflow, "ajuste", decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)

		assert.Equal(t, "10", in.Signed().String())
		assert.Equal(t, "-10", out.Signed().String())
	})

	t.Run("rejects invalid manual kind", func(t *testing.T) {
		_, err := NewManualMovement(drawerID, MovementKind("SIDEWAYS"), "x", decimal.NewFromInt(1), time.Now())
		assert.Error(t, err)
	})
}
