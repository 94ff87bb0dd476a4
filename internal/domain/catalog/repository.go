package catalog

import (
	"context"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentMethodRepository defines the interface for payment method persistence
type PaymentMethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)
	// FindByIDs returns the subset of the given methods that exist.
	// Writers use it to report every missing reference in one error.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]PaymentMethod, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PaymentMethod, error)
	Save(ctx context.Context, method *PaymentMethod) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConceptRepository defines the interface for billing concept persistence
type ConceptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Concept, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Concept, error)
	Save(ctx context.Context, concept *Concept) error
	Delete(ctx context.Context, id uuid.UUID) error
}
