package expense

import (
	"strings"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a cash outlay of the practice, paid through one or more
// payment splits. Unlike receipts, expenses carry no document number.
type Expense struct {
	shared.BaseEntity
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	CreatedBy   *uuid.UUID      `json:"created_by"`
	Splits      []Split         `json:"splits"`
}

// Split records how a portion of the expense was paid.
type Split struct {
	shared.BaseEntity
	ExpenseID       uuid.UUID       `json:"expense_id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	CheckReference  string          `json:"check_reference"`
}

// SplitInput describes a payment split of an expense being created or updated
type SplitInput struct {
	PaymentMethodID uuid.UUID
	Amount          decimal.Decimal
	CheckReference  string
}

const fixedPlaces = 2

// NewExpense assembles an expense from validated inputs. The splits must
// sum to the total amount at centavo precision.
func NewExpense(description string, amount decimal.Decimal, date time.Time, splits []SplitInput, createdBy *uuid.UUID) (*Expense, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense description cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense amount must be positive")
	}
	if len(splits) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expense must have at least one payment split")
	}

	e := &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		Description: description,
		Amount:      amount,
		Date:        date,
		CreatedBy:   createdBy,
	}

	built, err := buildSplits(e.ID, amount, splits)
	if err != nil {
		return nil, err
	}
	e.Splits = built
	return e, nil
}

// ReplaceSplits swaps the expense's splits for a new set, revalidating
// the sum against the (possibly updated) amount. Movements already
// posted for the old splits are not adjusted here; that is a known gap
// carried over from the original workflow.
func (e *Expense) ReplaceSplits(splits []SplitInput) error {
	if len(splits) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Expense must have at least one payment split")
	}
	built, err := buildSplits(e.ID, e.Amount, splits)
	if err != nil {
		return err
	}
	e.Splits = built
	e.UpdatedAt = time.Now()
	return nil
}

// SetAmount updates the total amount. Callers changing the amount must
// also replace the splits so the sum invariant keeps holding.
func (e *Expense) SetAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Expense amount must be positive")
	}
	e.Amount = amount
	e.UpdatedAt = time.Now()
	return nil
}

// SetDescription updates the description
func (e *Expense) SetDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Expense description cannot be empty")
	}
	e.Description = description
	e.UpdatedAt = time.Now()
	return nil
}

func buildSplits(expenseID uuid.UUID, total decimal.Decimal, inputs []SplitInput) ([]Split, error) {
	splits := make([]Split, 0, len(inputs))
	sum := decimal.Zero
	for _, in := range inputs {
		if in.PaymentMethodID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Split payment method reference is required")
		}
		if !in.Amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Split amount must be positive")
		}
		sum = sum.Add(in.Amount)
		splits = append(splits, Split{
			BaseEntity:      shared.NewBaseEntity(),
			ExpenseID:       expenseID,
			PaymentMethodID: in.PaymentMethodID,
			Amount:          in.Amount,
			CheckReference:  in.CheckReference,
		})
	}
	if !sum.Round(fixedPlaces).Equal(total.Round(fixedPlaces)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sum of splits does not match expense amount")
	}
	return splits, nil
}

// SplitMethodIDs returns the distinct payment method references of the inputs.
func SplitMethodIDs(splits []SplitInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(splits))
	ids := make([]uuid.UUID, 0, len(splits))
	for _, s := range splits {
		if _, ok := seen[s.PaymentMethodID]; ok {
			continue
		}
		seen[s.PaymentMethodID] = struct{}{}
		ids = append(ids, s.PaymentMethodID)
	}
	return ids
}
