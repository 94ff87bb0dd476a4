package catalog

import (
	"strings"

	"github.com/estudio/backend/internal/domain/shared"
)

// Concept is a reusable billing description offered when drafting
// receipt items ("Honorarios mensuales", "Presentación IVA", ...).
type Concept struct {
	shared.BaseEntity
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// NewConcept creates a new billing concept
func NewConcept(description string) (*Concept, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Concept description cannot be empty")
	}
	return &Concept{
		BaseEntity:  shared.NewBaseEntity(),
		Description: description,
		Active:      true,
	}, nil
}
