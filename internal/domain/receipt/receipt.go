package receipt

import (
	"strings"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is a numbered proof-of-payment document issued to a client.
// Document numbers are unique, strictly increasing and gapless under
// normal operation; the only sanctioned way to release a number is
// voiding the highest-numbered receipt.
type Receipt struct {
	shared.BaseEntity
	ClientID       uuid.UUID  `json:"client_id"`
	DocumentNumber int64      `json:"document_number"`
	IssuedAt       time.Time  `json:"issued_at"`
	Total          decimal.Decimal `json:"total"`
	CreatedBy      *uuid.UUID `json:"created_by"`
	Items          []Item     `json:"items"`
	Payments       []Payment  `json:"payments"`
}

// Item is a single billed line of a receipt: which concept, for which
// period, for how much.
type Item struct {
	shared.BaseEntity
	ReceiptID   uuid.UUID       `json:"receipt_id"`
	Description string          `json:"description"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
}

// Payment records how a portion of the receipt total was collected.
type Payment struct {
	shared.BaseEntity
	ReceiptID       uuid.UUID       `json:"receipt_id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	CheckNumbers    string          `json:"check_numbers"`
}

// ItemInput describes a line item of a receipt being created
type ItemInput struct {
	Description string
	Month       int
	Year        int
	Amount      decimal.Decimal
}

// PaymentInput describes a payment of a receipt being created
type PaymentInput struct {
	PaymentMethodID uuid.UUID
	Amount          decimal.Decimal
	CheckNumbers    string
}

const fixedPlaces = 2

// NewReceipt assembles a receipt from validated inputs. The total is
// the sum of its items, and items and payments must balance at centavo
// precision.
func NewReceipt(clientID uuid.UUID, documentNumber int64, issuedAt time.Time, items []ItemInput, payments []PaymentInput, createdBy *uuid.UUID) (*Receipt, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Client reference is required")
	}
	if documentNumber <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number must be positive")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt must have at least one item")
	}
	if len(payments) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt must have at least one payment")
	}

	r := &Receipt{
		BaseEntity:     shared.NewBaseEntity(),
		ClientID:       clientID,
		DocumentNumber: documentNumber,
		IssuedAt:       issuedAt,
		CreatedBy:      createdBy,
		Items:          make([]Item, 0, len(items)),
		Payments:       make([]Payment, 0, len(payments)),
	}

	itemsTotal := decimal.Zero
	for _, in := range items {
		if strings.TrimSpace(in.Description) == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item description cannot be empty")
		}
		if in.Month < 1 || in.Month > 12 {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item month must be between 1 and 12")
		}
		if !in.Amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Item amount must be positive")
		}
		itemsTotal = itemsTotal.Add(in.Amount)
		r.Items = append(r.Items, Item{
			BaseEntity:  shared.NewBaseEntity(),
			ReceiptID:   r.ID,
			Description: in.Description,
			Month:       in.Month,
			Year:        in.Year,
			Amount:      in.Amount,
		})
	}

	paymentsTotal := decimal.Zero
	for _, in := range payments {
		if in.PaymentMethodID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Payment method reference is required")
		}
		if !in.Amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
		}
		paymentsTotal = paymentsTotal.Add(in.Amount)
		r.Payments = append(r.Payments, Payment{
			BaseEntity:      shared.NewBaseEntity(),
			ReceiptID:       r.ID,
			PaymentMethodID: in.PaymentMethodID,
			Amount:          in.Amount,
			CheckNumbers:    in.CheckNumbers,
		})
	}

	if !itemsTotal.Round(fixedPlaces).Equal(paymentsTotal.Round(fixedPlaces)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Sum of items does not match sum of payments")
	}

	r.Total = itemsTotal
	return r, nil
}

// PaymentMethodIDs returns the distinct payment method references of the inputs.
func PaymentMethodIDs(payments []PaymentInput) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(payments))
	ids := make([]uuid.UUID, 0, len(payments))
	for _, p := range payments {
		if _, ok := seen[p.PaymentMethodID]; ok {
			continue
		}
		seen[p.PaymentMethodID] = struct{}{}
		ids = append(ids, p.PaymentMethodID)
	}
	return ids
}
