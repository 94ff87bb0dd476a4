package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/catalog"
	"github.com/estudio/backend/internal/domain/receipt"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptService provides application-level receipt operations. Creation
// and voiding run as single transactions spanning the numbering counter,
// the receipt tables and the drawer movements: a receipt can never exist
// without its number and its cash entries, nor the other way around.
type ReceiptService struct {
	receiptRepo  receipt.Repository
	counterRepo  receipt.CounterRepository
	drawerRepo   cashbox.DrawerRepository
	movementRepo cashbox.MovementRepository
	clientRepo   catalog.ClientRepository
	methodRepo   catalog.PaymentMethodRepository
	txManager    shared.TransactionManager
	clock        shared.Clock
	auditSink    audit.Sink
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	receiptRepo receipt.Repository,
	counterRepo receipt.CounterRepository,
	drawerRepo cashbox.DrawerRepository,
	movementRepo cashbox.MovementRepository,
	clientRepo catalog.ClientRepository,
	methodRepo catalog.PaymentMethodRepository,
	txManager shared.TransactionManager,
	clock shared.Clock,
	auditSink audit.Sink,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo:  receiptRepo,
		counterRepo:  counterRepo,
		drawerRepo:   drawerRepo,
		movementRepo: movementRepo,
		clientRepo:   clientRepo,
		methodRepo:   methodRepo,
		txManager:    txManager,
		clock:        clock,
		auditSink:    auditSink,
	}
}

// ReceiptItemResponse represents a receipt line item in API responses
type ReceiptItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReceiptPaymentResponse represents a receipt payment in API responses
type ReceiptPaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	CheckNumbers    string          `json:"check_numbers,omitempty"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID             uuid.UUID                `json:"id"`
	ClientID       uuid.UUID                `json:"client_id"`
	DocumentNumber int64                    `json:"document_number"`
	IssuedAt       time.Time                `json:"issued_at"`
	Total          decimal.Decimal          `json:"total"`
	CreatedBy      *uuid.UUID               `json:"created_by,omitempty"`
	Items          []ReceiptItemResponse    `json:"items"`
	Payments       []ReceiptPaymentResponse `json:"payments"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ItemRequest represents a line item of a receipt being created
type ItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Month       int             `json:"month" binding:"required"`
	Year        int             `json:"year" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// PaymentRequest represents a payment of a receipt being created
type PaymentRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CheckNumbers    string          `json:"check_numbers"`
}

// CreateReceiptRequest represents a request to create a receipt. A zero
// IssuedAt means "now".
type CreateReceiptRequest struct {
	ClientID  uuid.UUID        `json:"client_id" binding:"required"`
	IssuedAt  time.Time        `json:"issued_at"`
	Items     []ItemRequest    `json:"items" binding:"required,min=1"`
	Payments  []PaymentRequest `json:"payments" binding:"required,min=1"`
	CreatedBy *uuid.UUID       `json:"-"`
}

// ListFilter defines filtering options for receipt list queries
type ListFilter struct {
	ClientID *uuid.UUID `form:"client_id"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
}

// VoidLastRequest represents a request to void the latest receipt
type VoidLastRequest struct {
	Reason   string     `json:"reason"`
	VoidedBy *uuid.UUID `json:"-"`
}

// Create issues a new receipt. The drawer for the issue date must
// already be open — issuing a receipt never opens a drawer, and the
// open check runs inside the same transaction as the insert so a
// concurrent close cannot slip between validation and commit. The
// document number is taken from the counter under an exclusive row lock
// in that same transaction. An omitted issue date defaults to now.
func (s *ReceiptService) Create(ctx context.Context, req CreateReceiptRequest) (*ReceiptResponse, error) {
	if req.IssuedAt.IsZero() {
		req.IssuedAt = s.clock.Now()
	}

	exists, err := s.clientRepo.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
	}

	payments := make([]receipt.PaymentInput, len(req.Payments))
	for i, p := range req.Payments {
		payments[i] = receipt.PaymentInput{
			PaymentMethodID: p.PaymentMethodID,
			Amount:          p.Amount,
			CheckNumbers:    p.CheckNumbers,
		}
	}
	if err := s.requireMethods(ctx, receipt.PaymentMethodIDs(payments)); err != nil {
		return nil, err
	}

	items := make([]receipt.ItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = receipt.ItemInput{
			Description: it.Description,
			Month:       it.Month,
			Year:        it.Year,
			Amount:      it.Amount,
		}
	}

	var created *receipt.Receipt
	err = s.txManager.Transaction(ctx, func(ctx context.Context) error {
		drawer, err := s.requireOpenDrawer(ctx, req.IssuedAt)
		if err != nil {
			return err
		}

		number, err := s.counterRepo.Next(ctx)
		if err != nil {
			return err
		}

		rc, err := receipt.NewReceipt(req.ClientID, number, req.IssuedAt, items, payments, req.CreatedBy)
		if err != nil {
			return err
		}
		if err := s.receiptRepo.Save(ctx, rc); err != nil {
			return err
		}

		occurredAt := s.movementInstant(req.IssuedAt)
		movements := make([]*cashbox.Movement, len(rc.Payments))
		for i, p := range rc.Payments {
			methodID := p.PaymentMethodID
			label := fmt.Sprintf("Recibo N° %d", number)
			movement, err := cashbox.NewReceiptInflow(drawer.ID, rc.ID, &methodID, label, p.Amount, occurredAt)
			if err != nil {
				return err
			}
			movements[i] = movement
		}
		if err := s.movementRepo.Save(ctx, movements...); err != nil {
			return err
		}

		created = rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(created), nil
}

// VoidLast voids the receipt with the highest document number, releasing
// that number back to the counter. Only the latest receipt may be
// voided; voiding anything older would punch a hole in the sequence.
func (s *ReceiptService) VoidLast(ctx context.Context, req VoidLastRequest) (*ReceiptResponse, error) {
	var voided *receipt.Receipt
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		current, err := s.counterRepo.Current(ctx)
		if err != nil {
			return err
		}

		last, err := s.receiptRepo.FindHighest(ctx)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_STATE", "There is no receipt to void")
			}
			return err
		}

		// The counter and the receipts table must agree before a number
		// is released, otherwise the decrement would hand out a number
		// that is still in use.
		if last.DocumentNumber != current {
			return shared.NewDomainError("CONFLICT", "Receipt counter does not match the latest receipt")
		}
		above, err := s.receiptRepo.CountAbove(ctx, last.DocumentNumber)
		if err != nil {
			return err
		}
		if above != 0 {
			return shared.NewDomainError("CONFLICT", "A newer receipt exists; retry the void")
		}

		if err := s.movementRepo.DeleteByReceipt(ctx, last.ID); err != nil {
			return err
		}
		if err := s.receiptRepo.Delete(ctx, last.ID); err != nil {
			return err
		}
		if err := s.counterRepo.Decrement(ctx); err != nil {
			return err
		}

		voided = last
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSink.Record(ctx, audit.NewEntry(req.VoidedBy, audit.ActionReceiptVoided, "receipt", &voided.ID, map[string]any{
		"document_number": voided.DocumentNumber,
		"total":           voided.Total,
		"reason":          req.Reason,
	}))
	return toReceiptResponse(voided), nil
}

// DeleteByID removes a receipt without touching the counter. Deleting a
// non-latest receipt leaves a permanent gap in the numbering; the audit
// trail records it so the gap can be explained later.
func (s *ReceiptService) DeleteByID(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	var deleted *receipt.Receipt
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		rc, err := s.receiptRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.movementRepo.DeleteByReceipt(ctx, rc.ID); err != nil {
			return err
		}
		if err := s.receiptRepo.Delete(ctx, rc.ID); err != nil {
			return err
		}
		deleted = rc
		return nil
	})
	if err != nil {
		return err
	}

	s.auditSink.Record(ctx, audit.NewEntry(deletedBy, audit.ActionReceiptDeleted, "receipt", &deleted.ID, map[string]any{
		"document_number": deleted.DocumentNumber,
		"total":           deleted.Total,
		"leaves_gap":      true,
	}))
	return nil
}

// FindUltimate returns the latest issued receipt
func (s *ReceiptService) FindUltimate(ctx context.Context) (*ReceiptResponse, error) {
	last, err := s.receiptRepo.FindHighest(ctx)
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(last), nil
}

// GetByID returns a receipt by ID
func (s *ReceiptService) GetByID(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	rc, err := s.receiptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(rc), nil
}

// List lists receipts with filtering
func (s *ReceiptService) List(ctx context.Context, filter ListFilter) ([]ReceiptResponse, int64, error) {
	domainFilter := receipt.Filter{
		ClientID: filter.ClientID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	receipts, err := s.receiptRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receiptRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReceiptResponse, len(receipts))
	for i, rc := range receipts {
		responses[i] = *toReceiptResponse(&rc)
	}
	return responses, total, nil
}

// requireOpenDrawer enforces the strict precondition for issuing: the
// drawer of the issue date exists and is open. A missing drawer and a
// closed one are distinct failures. Unlike expenses, receipts never
// open a drawer on their own.
func (s *ReceiptService) requireOpenDrawer(ctx context.Context, date time.Time) (*cashbox.Drawer, error) {
	drawer, err := s.drawerRepo.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "No drawer exists for this date")
		}
		return nil, err
	}
	if drawer.Closed {
		return nil, shared.NewDomainError("INVALID_STATE", "Drawer is closed for this date")
	}
	return drawer, nil
}

// requireMethods verifies every referenced payment method exists
func (s *ReceiptService) requireMethods(ctx context.Context, ids []uuid.UUID) error {
	found, err := s.methodRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return shared.NewDomainError("INVALID_INPUT", "One or more payment methods do not exist")
	}
	return nil
}

// movementInstant places a movement on the receipt's calendar day at the
// current wall-clock time, so same-day entries keep their real order
// while backdated receipts land inside their own drawer. The input is
// already a calendar date; converting it into the business zone would
// shift it to the previous day.
func (s *ReceiptService) movementInstant(date time.Time) time.Time {
	now := s.clock.Now()
	day := cashbox.NormalizeDate(date)
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), s.clock.Location())
}

func toReceiptResponse(rc *receipt.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:             rc.ID,
		ClientID:       rc.ClientID,
		DocumentNumber: rc.DocumentNumber,
		IssuedAt:       rc.IssuedAt,
		Total:          rc.Total,
		CreatedBy:      rc.CreatedBy,
		Items:          make([]ReceiptItemResponse, len(rc.Items)),
		Payments:       make([]ReceiptPaymentResponse, len(rc.Payments)),
		CreatedAt:      rc.CreatedAt,
		UpdatedAt:      rc.UpdatedAt,
	}
	for i, it := range rc.Items {
		resp.Items[i] = ReceiptItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Month:       it.Month,
			Year:        it.Year,
			Amount:      it.Amount,
		}
	}
	for i, p := range rc.Payments {
		resp.Payments[i] = ReceiptPaymentResponse{
			ID:              p.ID,
			PaymentMethodID: p.PaymentMethodID,
			Amount:          p.Amount,
			CheckNumbers:    p.CheckNumbers,
		}
	}
	return resp
}
