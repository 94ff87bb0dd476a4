package expense

import (
	"testing"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSplits() []SplitInput {
	return []SplitInput{
		{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(120)},
		{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(80)},
	}
}

func TestNewExpense(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("creates expense with splits", func(t *testing.T) {
		e, err := NewExpense("Librería", decimal.NewFromInt(200), date, twoSplits(), nil)
		require.NoError(t, err)
		assert.Equal(t, "200.00", e.Amount.StringFixed(2))
		require.Len(t, e.Splits, 2)
		for _, s := range e.Splits {
			assert.Equal(t, e.ID, s.ExpenseID)
		}
	})

	t.Run("rejects blank description", func(t *testing.T) {
		_, err := NewExpense("   ", decimal.NewFromInt(200), date, twoSplits(), nil)
		assertInvalidInput(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewExpense("Librería", decimal.Zero, date, twoSplits(), nil)
		assertInvalidInput(t, err)
	})

	t.Run("rejects split sum mismatch", func(t *testing.T) {
		splits := []SplitInput{{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(150)}}
		_, err := NewExpense("Librería", decimal.NewFromInt(200), date, splits, nil)
		assertInvalidInput(t, err)
	})

	t.Run("split sum compared at two decimals", func(t *testing.T) {
		splits := []SplitInput{{PaymentMethodID: uuid.New(), Amount: decimal.NewFromFloat(199.999)}}
		_, err := NewExpense("Librería", decimal.NewFromFloat(200.001), date, splits, nil)
		assert.NoError(t, err)
	})

	t.Run("rejects empty splits", func(t *testing.T) {
		_, err := NewExpense("Librería", decimal.NewFromInt(200), date, nil, nil)
		assertInvalidInput(t, err)
	})
}

func TestReplaceSplits(t *testing.T) {
	date := time.Now()
	e, err := NewExpense("Alquiler", decimal.NewFromInt(200), date, twoSplits(), nil)
	require.NoError(t, err)

	t.Run("replaces with matching sum", func(t *testing.T) {
		method := uuid.New()
		require.NoError(t, e.ReplaceSplits([]SplitInput{{PaymentMethodID: method, Amount: decimal.NewFromInt(200)}}))
		require.Len(t, e.Splits, 1)
		assert.Equal(t, method, e.Splits[0].PaymentMethodID)
	})

	t.Run("rejects mismatching sum", func(t *testing.T) {
		err := e.ReplaceSplits([]SplitInput{{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(100)}})
		assertInvalidInput(t, err)
	})

	t.Run("revalidates against an updated amount", func(t *testing.T) {
		require.NoError(t, e.SetAmount(decimal.NewFromInt(500)))
		require.NoError(t, e.ReplaceSplits([]SplitInput{{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(500)}}))
	})
}

func assertInvalidInput(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}
