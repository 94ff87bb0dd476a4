package catalog

import (
	"strings"

	"github.com/estudio/backend/internal/domain/shared"
)

// PaymentMethod is an accepted form of payment (cash, transfer, check).
type PaymentMethod struct {
	shared.BaseEntity
	Name          string `json:"name"`
	RequiresCheck bool   `json:"requires_check"`
	Active        bool   `json:"active"`
}

// NewPaymentMethod creates a new payment method
func NewPaymentMethod(name string, requiresCheck bool) (*PaymentMethod, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment method name cannot be empty")
	}
	return &PaymentMethod{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		RequiresCheck: requiresCheck,
		Active:        true,
	}, nil
}
