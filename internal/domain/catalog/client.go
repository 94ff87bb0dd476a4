package catalog

import (
	"strings"

	"github.com/estudio/backend/internal/domain/shared"
)

// Client is a customer of the accounting practice. The ledger core only
// needs existence checks against clients; their lifecycle carries no
// concurrency hazard.
type Client struct {
	shared.BaseEntity
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Active   bool   `json:"active"`
	Notes    string `json:"notes"`
}

// NewClient creates a new client
func NewClient(name, taxID string) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Client name cannot be empty")
	}
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		TaxID:      taxID,
		Active:     true,
	}, nil
}
