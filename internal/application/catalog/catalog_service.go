package catalog

import (
	"context"
	"time"

	"github.com/estudio/backend/internal/domain/catalog"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CatalogService provides application-level operations over the
// reference catalogs: clients, payment methods and billing concepts.
type CatalogService struct {
	clientRepo  catalog.ClientRepository
	methodRepo  catalog.PaymentMethodRepository
	conceptRepo catalog.ConceptRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	clientRepo catalog.ClientRepository,
	methodRepo catalog.PaymentMethodRepository,
	conceptRepo catalog.ConceptRepository,
) *CatalogService {
	return &CatalogService{
		clientRepo:  clientRepo,
		methodRepo:  methodRepo,
		conceptRepo: conceptRepo,
	}
}

// ===================== Client Operations =====================

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"tax_id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	TaxID   string `json:"tax_id"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
	Notes   string `json:"notes"`
}

// ListFilter defines filtering options for catalog list queries
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

func (f ListFilter) toShared() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}
}

// CreateClient creates a new client
func (s *CatalogService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := catalog.NewClient(req.Name, req.TaxID)
	if err != nil {
		return nil, err
	}
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.Notes = req.Notes

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// UpdateClient updates an existing client
func (s *CatalogService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = req.Name
	client.TaxID = req.TaxID
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.Notes = req.Notes
	if req.Active != nil {
		client.Active = *req.Active
	}
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetClient returns a client by ID
func (s *CatalogService) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ListClients lists clients with filtering
func (s *CatalogService) ListClients(ctx context.Context, filter ListFilter) ([]ClientResponse, int64, error) {
	domainFilter := filter.toShared()
	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i, c := range clients {
		responses[i] = *toClientResponse(&c)
	}
	return responses, total, nil
}

// DeleteClient removes a client
func (s *CatalogService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.clientRepo.Delete(ctx, id)
}

// ===================== Payment Method Operations =====================

// PaymentMethodResponse represents a payment method in API responses
type PaymentMethodResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	RequiresCheck bool      `json:"requires_check"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreatePaymentMethodRequest represents a request to create a payment method
type CreatePaymentMethodRequest struct {
	Name          string `json:"name" binding:"required"`
	RequiresCheck bool   `json:"requires_check"`
}

// CreatePaymentMethod creates a new payment method
func (s *CatalogService) CreatePaymentMethod(ctx context.Context, req CreatePaymentMethodRequest) (*PaymentMethodResponse, error) {
	method, err := catalog.NewPaymentMethod(req.Name, req.RequiresCheck)
	if err != nil {
		return nil, err
	}
	if err := s.methodRepo.Save(ctx, method); err != nil {
		return nil, err
	}
	return toPaymentMethodResponse(method), nil
}

// ListPaymentMethods lists payment methods
func (s *CatalogService) ListPaymentMethods(ctx context.Context, filter ListFilter) ([]PaymentMethodResponse, error) {
	methods, err := s.methodRepo.FindAll(ctx, filter.toShared())
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentMethodResponse, len(methods))
	for i, m := range methods {
		responses[i] = *toPaymentMethodResponse(&m)
	}
	return responses, nil
}

// DeletePaymentMethod removes a payment method
func (s *CatalogService) DeletePaymentMethod(ctx context.Context, id uuid.UUID) error {
	return s.methodRepo.Delete(ctx, id)
}

// ===================== Concept Operations =====================

// ConceptResponse represents a billing concept in API responses
type ConceptResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateConceptRequest represents a request to create a billing concept
type CreateConceptRequest struct {
	Description string `json:"description" binding:"required"`
}

// CreateConcept creates a new billing concept
func (s *CatalogService) CreateConcept(ctx context.Context, req CreateConceptRequest) (*ConceptResponse, error) {
	concept, err := catalog.NewConcept(req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.conceptRepo.Save(ctx, concept); err != nil {
		return nil, err
	}
	return toConceptResponse(concept), nil
}

// ListConcepts lists billing concepts
func (s *CatalogService) ListConcepts(ctx context.Context, filter ListFilter) ([]ConceptResponse, error) {
	concepts, err := s.conceptRepo.FindAll(ctx, filter.toShared())
	if err != nil {
		return nil, err
	}
	responses := make([]ConceptResponse, len(concepts))
	for i, c := range concepts {
		responses[i] = *toConceptResponse(&c)
	}
	return responses, nil
}

// DeleteConcept removes a billing concept
func (s *CatalogService) DeleteConcept(ctx context.Context, id uuid.UUID) error {
	return s.conceptRepo.Delete(ctx, id)
}

func toClientResponse(c *catalog.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Active:    c.Active,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toPaymentMethodResponse(m *catalog.PaymentMethod) *PaymentMethodResponse {
	return &PaymentMethodResponse{
		ID:            m.ID,
		Name:          m.Name,
		RequiresCheck: m.RequiresCheck,
		Active:        m.Active,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toConceptResponse(c *catalog.Concept) *ConceptResponse {
	return &ConceptResponse{
		ID:          c.ID,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
