package cashbox

import (
	"context"
	"errors"
	"time"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DrawerService provides application-level cash drawer operations
type DrawerService struct {
	drawerRepo   cashbox.DrawerRepository
	movementRepo cashbox.MovementRepository
	txManager    shared.TransactionManager
	clock        shared.Clock
	auditSink    audit.Sink
	logger       *zap.Logger
}

// NewDrawerService creates a new DrawerService
func NewDrawerService(
	drawerRepo cashbox.DrawerRepository,
	movementRepo cashbox.MovementRepository,
	txManager shared.TransactionManager,
	clock shared.Clock,
	auditSink audit.Sink,
	logger *zap.Logger,
) *DrawerService {
	return &DrawerService{
		drawerRepo:   drawerRepo,
		movementRepo: movementRepo,
		txManager:    txManager,
		clock:        clock,
		auditSink:    auditSink,
		logger:       logger,
	}
}

// DrawerResponse represents a drawer in API responses
type DrawerResponse struct {
	ID             uuid.UUID        `json:"id"`
	Date           time.Time        `json:"date"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance *decimal.Decimal `json:"closing_balance,omitempty"`
	Closed         bool             `json:"closed"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	OpenedBy       *uuid.UUID       `json:"opened_by,omitempty"`
	ClosedBy       *uuid.UUID       `json:"closed_by,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// MovementResponse represents a drawer movement with its running balance
type MovementResponse struct {
	ID              uuid.UUID       `json:"id"`
	Kind            string          `json:"kind"`
	Label           string          `json:"label"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	ReceiptID       *uuid.UUID      `json:"receipt_id,omitempty"`
	ExpenseID       *uuid.UUID      `json:"expense_id,omitempty"`
	PaymentMethodID *uuid.UUID      `json:"payment_method_id,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// DrawerSummaryResponse is the full daily view of a drawer: its state,
// totals and movements annotated with the derived running balance.
type DrawerSummaryResponse struct {
	Drawer         DrawerResponse     `json:"drawer"`
	Movements      []MovementResponse `json:"movements"`
	TotalInflow    decimal.Decimal    `json:"total_inflow"`
	TotalOutflow   decimal.Decimal    `json:"total_outflow"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
	MovementCount  int                `json:"movement_count"`
}

// OpenDrawerRequest represents a request to open the drawer for a date
type OpenDrawerRequest struct {
	Date           time.Time       `json:"date" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	OpenedBy       *uuid.UUID      `json:"-"`
}

// ManualMovementRequest represents a hand-entered cash adjustment
type ManualMovementRequest struct {
	Date   time.Time       `json:"date" binding:"required"`
	Kind   string          `json:"kind" binding:"required"`
	Label  string          `json:"label" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// Open opens the drawer for the given date. Opening is idempotent: if
// the date already has a drawer, that drawer is returned untouched and
// the provided opening balance is ignored.
func (s *DrawerService) Open(ctx context.Context, req OpenDrawerRequest) (*DrawerResponse, error) {
	existing, err := s.drawerRepo.FindByDate(ctx, req.Date)
	if err == nil {
		return toDrawerResponse(existing), nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	drawer, err := cashbox.NewDrawer(req.Date, req.OpeningBalance, req.OpenedBy)
	if err != nil {
		return nil, err
	}
	if err := s.drawerRepo.Save(ctx, drawer); err != nil {
		// A concurrent opener won the per-date uniqueness race; theirs
		// is the drawer of record.
		if errors.Is(err, shared.ErrConflict) {
			winner, findErr := s.drawerRepo.FindByDate(ctx, req.Date)
			if findErr != nil {
				return nil, err
			}
			return toDrawerResponse(winner), nil
		}
		return nil, err
	}
	return toDrawerResponse(drawer), nil
}

// Close closes the drawer for the given date. The closing balance is
// derived from the opening balance and the movements at the moment of
// closing, unless the caller supplies an explicit override.
func (s *DrawerService) Close(ctx context.Context, date time.Time, override *decimal.Decimal, closedBy *uuid.UUID) (*DrawerResponse, error) {
	var closed *cashbox.Drawer
	err := s.txManager.Transaction(ctx, func(ctx context.Context) error {
		drawer, err := s.drawerRepo.FindByDate(ctx, date)
		if err != nil {
			return err
		}
		movements, err := s.movementRepo.FindByDrawer(ctx, drawer.ID)
		if err != nil {
			return err
		}
		ledger := cashbox.ComputeLedger(drawer.OpeningBalance, movements)
		closing := ledger.FinalBalance
		if override != nil {
			closing = *override
		}
		if err := drawer.Close(closing, s.clock.Now(), closedBy); err != nil {
			return err
		}
		if err := s.drawerRepo.Save(ctx, drawer); err != nil {
			return err
		}
		closed = drawer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSink.Record(ctx, audit.NewEntry(closedBy, audit.ActionDrawerClosed, "drawer", &closed.ID, map[string]any{
		"date":            closed.Date.Format("2006-01-02"),
		"closing_balance": closed.ClosingBalance,
		"overridden":      override != nil,
	}))
	return toDrawerResponse(closed), nil
}

// Reopen reopens a closed drawer so corrections can be posted to it.
func (s *DrawerService) Reopen(ctx context.Context, date time.Time, reopenedBy *uuid.UUID) (*DrawerResponse, error) {
	drawer, err := s.drawerRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := drawer.Reopen(); err != nil {
		return nil, err
	}
	if err := s.drawerRepo.Save(ctx, drawer); err != nil {
		return nil, err
	}

	s.auditSink.Record(ctx, audit.NewEntry(reopenedBy, audit.ActionDrawerReopened, "drawer", &drawer.ID, map[string]any{
		"date": drawer.Date.Format("2006-01-02"),
	}))
	return toDrawerResponse(drawer), nil
}

// Summary returns the drawer for a date together with its derived
// ledger. Movements are presented most-recent first; a positive limit
// slices a page window out of that ordering. The totals and the running
// balances always cover the whole day, not just the returned window.
func (s *DrawerService) Summary(ctx context.Context, date time.Time, page, limit int) (*DrawerSummaryResponse, error) {
	drawer, err := s.drawerRepo.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.FindByDrawer(ctx, drawer.ID)
	if err != nil {
		return nil, err
	}

	ledger := cashbox.ComputeLedger(drawer.OpeningBalance, movements)
	lines := ledger.Descending()
	total := len(lines)
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * limit
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		lines = lines[start:end]
	}
	responses := make([]MovementResponse, len(lines))
	for i, line := range lines {
		responses[i] = toMovementResponse(line)
	}

	return &DrawerSummaryResponse{
		Drawer:         *toDrawerResponse(drawer),
		Movements:      responses,
		TotalInflow:    ledger.TotalInflow,
		TotalOutflow:   ledger.TotalOutflow,
		CurrentBalance: ledger.FinalBalance,
		MovementCount:  total,
	}, nil
}

// ListRange returns the drawers of a date range, oldest first.
func (s *DrawerService) ListRange(ctx context.Context, from, to time.Time) ([]DrawerResponse, error) {
	drawers, err := s.drawerRepo.FindRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	responses := make([]DrawerResponse, len(drawers))
	for i, d := range drawers {
		responses[i] = *toDrawerResponse(&d)
	}
	return responses, nil
}

// AddManualMovement posts a hand-entered adjustment to an open drawer.
func (s *DrawerService) AddManualMovement(ctx context.Context, req ManualMovementRequest) (*DrawerSummaryResponse, error) {
	drawer, err := s.drawerRepo.FindByDate(ctx, req.Date)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "No drawer exists for this date")
		}
		return nil, err
	}
	if drawer.Closed {
		return nil, shared.NewDomainError("INVALID_STATE", "Drawer is closed")
	}

	movement, err := cashbox.NewManualMovement(drawer.ID, cashbox.MovementKind(req.Kind), req.Label, req.Amount, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.movementRepo.Save(ctx, movement); err != nil {
		return nil, err
	}
	return s.Summary(ctx, req.Date, 0, 0)
}

// ListOpenBefore reports the drawers still open on dates before the
// current business day — the candidates the nightly sweep would close —
// without closing them.
func (s *DrawerService) ListOpenBefore(ctx context.Context) ([]DrawerResponse, error) {
	stale, err := s.drawerRepo.FindOpenBefore(ctx, s.clock.Today())
	if err != nil {
		return nil, err
	}
	responses := make([]DrawerResponse, len(stale))
	for i, d := range stale {
		responses[i] = *toDrawerResponse(&d)
	}
	return responses, nil
}

// AutoCloseStaleResult reports the outcome of an auto-close sweep
type AutoCloseStaleResult struct {
	Closed []time.Time
	Failed []time.Time
}

// AutoCloseStale closes every drawer left open on a date before today.
// Each drawer closes in its own transaction; one failure does not stop
// the sweep.
func (s *DrawerService) AutoCloseStale(ctx context.Context) (*AutoCloseStaleResult, error) {
	stale, err := s.drawerRepo.FindOpenBefore(ctx, s.clock.Today())
	if err != nil {
		return nil, err
	}

	result := &AutoCloseStaleResult{}
	for _, d := range stale {
		if _, err := s.Close(ctx, d.Date, nil, nil); err != nil {
			s.logger.Warn("failed to auto-close stale drawer",
				zap.String("date", d.Date.Format("2006-01-02")),
				zap.Error(err))
			result.Failed = append(result.Failed, d.Date)
			continue
		}
		result.Closed = append(result.Closed, d.Date)
	}
	return result, nil
}

func toDrawerResponse(d *cashbox.Drawer) *DrawerResponse {
	return &DrawerResponse{
		ID:             d.ID,
		Date:           d.Date,
		OpeningBalance: d.OpeningBalance,
		ClosingBalance: d.ClosingBalance,
		Closed:         d.Closed,
		ClosedAt:       d.ClosedAt,
		OpenedBy:       d.OpenedBy,
		ClosedBy:       d.ClosedBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func toMovementResponse(line cashbox.LedgerLine) MovementResponse {
	m := line.Movement
	return MovementResponse{
		ID:              m.ID,
		Kind:            m.Kind.String(),
		Label:           m.Label,
		Amount:          m.Amount,
		Balance:         line.Balance,
		ReceiptID:       m.ReceiptID,
		ExpenseID:       m.ExpenseID,
		PaymentMethodID: m.PaymentMethodID,
		OccurredAt:      m.OccurredAt,
	}
}
