package expense

import (
	"context"
	"errors"
	"time"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/catalog"
	"github.com/estudio/backend/internal/domain/expense"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService provides application-level expense operations. Creating
// an expense posts one outflow movement per payment split, atomically
// with the expense itself.
type ExpenseService struct {
	expenseRepo  expense.Repository
	drawerRepo   cashbox.DrawerRepository
	movementRepo cashbox.MovementRepository
	methodRepo   catalog.PaymentMethodRepository
	txManager    shared.TransactionManager
	clock        shared.Clock
	auditSink    audit.Sink
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo expense.Repository,
	drawerRepo cashbox.DrawerRepository,
	movementRepo cashbox.MovementRepository,
	methodRepo catalog.PaymentMethodRepository,
	txManager shared.TransactionManager,
	clock shared.Clock,
	auditSink audit.Sink,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		drawerRepo:   drawerRepo,
		movementRepo: movementRepo,
		methodRepo:   methodRepo,
		txManager:    txManager,
		clock:        clock,
		auditSink:    auditSink,
	}
}

// SplitResponse represents an expense payment split in API responses
type SplitResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	CheckReference  string          `json:"check_reference,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	Splits      []SplitResponse `json:"splits"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SplitRequest represents a payment split of an expense
type SplitRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	CheckReference  string          `json:"check_reference"`
}

// CreateExpenseRequest represents a request to create an expense.
// AutoOpenIfClosed lets the caller reopen a closed drawer for the
// expense date instead of being rejected.
type CreateExpenseRequest struct {
	Description      string          `json:"description" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Date             time.Time       `json:"date" binding:"required"`
	Splits           []SplitRequest  `json:"splits" binding:"required,min=1"`
	AutoOpenIfClosed bool            `json:"auto_open_if_closed"`
	CreatedBy        *uuid.UUID      `json:"-"`
}

// UpdateExpenseRequest represents a request to update an expense
type UpdateExpenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Splits      []SplitRequest  `json:"splits" binding:"required,min=1"`
}

// ListFilter defines filtering options for expense list queries
type ListFilter struct {
	Search   string     `form:"search"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir"`
}

// Create records a new expense. If the drawer for the expense date does
// not exist yet it is opened on the fly with a zero opening balance —
// the one place in the system where a write opens a drawer. A closed
// drawer rejects the expense unless the caller asked to reopen it.
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	splits := make([]expense.SplitInput, len(req.Splits))
	for i, sp := range req.Splits {
		splits[i] = expense.SplitInput{
			PaymentMethodID: sp.PaymentMethodID,
			Amount:          sp.Amount,
			CheckReference:  sp.CheckReference,
		}
	}
	if err := s.requireMethods(ctx, expense.SplitMethodIDs(splits)); err != nil {
		return nil, err
	}

	var created *expense.Expense
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		drawer, err := s.openOrRequireDrawer(ctx, req.Date, req.AutoOpenIfClosed, req.CreatedBy)
		if err != nil {
			return err
		}

		e, err := expense.NewExpense(req.Description, req.Amount, req.Date, splits, req.CreatedBy)
		if err != nil {
			return err
		}
		if err := s.expenseRepo.Save(ctx, e); err != nil {
			return err
		}

		occurredAt := s.movementInstant(req.Date)
		movements := make([]*cashbox.Movement, len(e.Splits))
		for i, sp := range e.Splits {
			methodID := sp.PaymentMethodID
			movement, err := cashbox.NewExpenseOutflow(drawer.ID, e.ID, &methodID, e.Description, sp.Amount, occurredAt)
			if err != nil {
				return err
			}
			movements[i] = movement
		}
		if err := s.movementRepo.Save(ctx, movements...); err != nil {
			return err
		}

		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(created), nil
}

// Update rewrites an expense's description, amount and splits. The
// splits are replaced wholesale. Movements already posted for the old
// splits are left as they were; this mirrors the manual correction
// workflow where the bookkeeper adjusts the drawer by hand.
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	splits := make([]expense.SplitInput, len(req.Splits))
	for i, sp := range req.Splits {
		splits[i] = expense.SplitInput{
			PaymentMethodID: sp.PaymentMethodID,
			Amount:          sp.Amount,
			CheckReference:  sp.CheckReference,
		}
	}
	if err := s.requireMethods(ctx, expense.SplitMethodIDs(splits)); err != nil {
		return nil, err
	}

	var updated *expense.Expense
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		e, err := s.expenseRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := e.SetDescription(req.Description); err != nil {
			return err
		}
		if err := e.SetAmount(req.Amount); err != nil {
			return err
		}
		if err := e.ReplaceSplits(splits); err != nil {
			return err
		}
		if err := s.expenseRepo.ReplaceSplits(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(updated), nil
}

// Delete removes an expense together with the movements it posted.
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID, deletedBy *uuid.UUID) error {
	var deleted *expense.Expense
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		e, err := s.expenseRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.movementRepo.DeleteByExpense(ctx, e.ID); err != nil {
			return err
		}
		if err := s.expenseRepo.Delete(ctx, e.ID); err != nil {
			return err
		}
		deleted = e
		return nil
	})
	if err != nil {
		return err
	}

	s.auditSink.Record(ctx, audit.NewEntry(deletedBy, audit.ActionExpenseDeleted, "expense", &deleted.ID, map[string]any{
		"description": deleted.Description,
		"amount":      deleted.Amount,
	}))
	return nil
}

// GetByID returns an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	e, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(e), nil
}

// List lists expenses with filtering
func (s *ExpenseService) List(ctx context.Context, filter ListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := expense.Filter{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	expenses, err := s.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		responses[i] = *toExpenseResponse(&e)
	}
	return responses, total, nil
}

// openOrRequireDrawer resolves the drawer for an expense date, opening
// it with a zero balance when the date has none. A closed drawer is
// reopened only when the caller explicitly allowed it; it is never
// reopened silently.
func (s *ExpenseService) openOrRequireDrawer(ctx context.Context, date time.Time, allowReopen bool, userID *uuid.UUID) (*cashbox.Drawer, error) {
	drawer, err := s.drawerRepo.FindByDate(ctx, date)
	if err == nil {
		if !drawer.Closed {
			return drawer, nil
		}
		if !allowReopen {
			return nil, shared.NewDomainError("INVALID_STATE", "Drawer is closed for this date")
		}
		if err := drawer.Reopen(); err != nil {
			return nil, err
		}
		if err := s.drawerRepo.Save(ctx, drawer); err != nil {
			return nil, err
		}
		return drawer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	drawer, err = cashbox.NewDrawer(date, decimal.Zero, userID)
	if err != nil {
		return nil, err
	}
	if err := s.drawerRepo.Save(ctx, drawer); err != nil {
		return nil, err
	}
	return drawer, nil
}

// requireMethods verifies every referenced payment method exists
func (s *ExpenseService) requireMethods(ctx context.Context, ids []uuid.UUID) error {
	found, err := s.methodRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return shared.NewDomainError("INVALID_INPUT", "One or more payment methods do not exist")
	}
	return nil
}

// movementInstant places a movement on the expense's calendar day at the
// current wall-clock time. The input is already a calendar date;
// converting it into the business zone would shift it to the previous
// day.
func (s *ExpenseService) movementInstant(date time.Time) time.Time {
	now := s.clock.Now()
	day := cashbox.NormalizeDate(date)
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), s.clock.Location())
}

func toExpenseResponse(e *expense.Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		CreatedBy:   e.CreatedBy,
		Splits:      make([]SplitResponse, len(e.Splits)),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i, sp := range e.Splits {
		resp.Splits[i] = SplitResponse{
			ID:              sp.ID,
			PaymentMethodID: sp.PaymentMethodID,
			Amount:          sp.Amount,
			CheckReference:  sp.CheckReference,
		}
	}
	return resp
}
