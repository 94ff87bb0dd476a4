package cashbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks and fakes
// =============================================================================

// MockDrawerRepository is a mock implementation of cashbox.DrawerRepository
type MockDrawerRepository struct {
	mock.Mock
}

func (m *MockDrawerRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashbox.Drawer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashbox.Drawer), args.Error(1)
}

func (m *MockDrawerRepository) FindByDate(ctx context.Context, date time.Time) (*cashbox.Drawer, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cashbox.Drawer), args.Error(1)
}

func (m *MockDrawerRepository) FindOpenBefore(ctx context.Context, date time.Time) ([]cashbox.Drawer, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cashbox.Drawer), args.Error(1)
}

func (m *MockDrawerRepository) FindRange(ctx context.Context, from, to time.Time) ([]cashbox.Drawer, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cashbox.Drawer), args.Error(1)
}

func (m *MockDrawerRepository) Save(ctx context.Context, drawer *cashbox.Drawer) error {
	args := m.Called(ctx, drawer)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of cashbox.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) FindByDrawer(ctx context.Context, drawerID uuid.UUID) ([]cashbox.Movement, error) {
	args := m.Called(ctx, drawerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cashbox.Movement), args.Error(1)
}

func (m *MockMovementRepository) Save(ctx context.Context, movements ...*cashbox.Movement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockMovementRepository) DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error {
	args := m.Called(ctx, receiptID)
	return args.Error(0)
}

func (m *MockMovementRepository) DeleteByExpense(ctx context.Context, expenseID uuid.UUID) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

// passthroughTxManager runs the unit of work on the caller's context
type passthroughTxManager struct{}

func (passthroughTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixedClock pins the business time for deterministic tests
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time           { return c.now }
func (c fixedClock) Today() time.Time         { return cashbox.NormalizeDate(c.now) }
func (c fixedClock) Location() *time.Location { return c.now.Location() }

// recordingSink captures audit entries for assertions
type recordingSink struct {
	entries []*audit.Entry
}

func (s *recordingSink) Record(_ context.Context, entry *audit.Entry) {
	s.entries = append(s.entries, entry)
}

func newDrawerService(drawerRepo *MockDrawerRepository, movementRepo *MockMovementRepository, clock shared.Clock, sink *recordingSink) *DrawerService {
	return NewDrawerService(drawerRepo, movementRepo, passthroughTxManager{}, clock, sink, zap.NewNop())
}

// =============================================================================
// Tests
// =============================================================================

func TestDrawerService_Open(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}

	t.Run("opens a new drawer for the date", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawerRepo.On("FindByDate", mock.Anything, date).Return(nil, shared.ErrNotFound)
		drawerRepo.On("Save", mock.Anything, mock.AnythingOfType("*cashbox.Drawer")).Return(nil)

		resp, err := service.Open(context.Background(), OpenDrawerRequest{
			Date:           date,
			OpeningBalance: decimal.NewFromInt(1000),
		})

		require.NoError(t, err)
		assert.True(t, resp.OpeningBalance.Equal(decimal.NewFromInt(1000)))
		assert.False(t, resp.Closed)
		drawerRepo.AssertExpectations(t)
	})

	t.Run("returns the existing drawer untouched", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		existing, err := cashbox.NewDrawer(date, decimal.NewFromInt(500), nil)
		require.NoError(t, err)
		drawerRepo.On("FindByDate", mock.Anything, date).Return(existing, nil)

		resp, err := service.Open(context.Background(), OpenDrawerRequest{
			Date:           date,
			OpeningBalance: decimal.NewFromInt(9999),
		})

		require.NoError(t, err)
		assert.Equal(t, existing.ID, resp.ID)
		assert.True(t, resp.OpeningBalance.Equal(decimal.NewFromInt(500)))
		drawerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("resolves a concurrent open race to the winner", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		winner, err := cashbox.NewDrawer(date, decimal.NewFromInt(200), nil)
		require.NoError(t, err)
		drawerRepo.On("FindByDate", mock.Anything, date).Return(nil, shared.ErrNotFound).Once()
		drawerRepo.On("Save", mock.Anything, mock.AnythingOfType("*cashbox.Drawer")).Return(shared.ErrConflict)
		drawerRepo.On("FindByDate", mock.Anything, date).Return(winner, nil).Once()

		resp, err := service.Open(context.Background(), OpenDrawerRequest{Date: date})

		require.NoError(t, err)
		assert.Equal(t, winner.ID, resp.ID)
	})
}

func TestDrawerService_Close(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)}

	t.Run("derives the closing balance from the movements", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(1000), nil)
		require.NoError(t, err)
		inflow, err := cashbox.NewReceiptInflow(drawer.ID, uuid.New(), nil, "Recibo N° 1", decimal.NewFromInt(300), clock.now)
		require.NoError(t, err)
		outflow, err := cashbox.NewExpenseOutflow(drawer.ID, uuid.New(), nil, "Papelería", decimal.NewFromInt(120), clock.now)
		require.NoError(t, err)

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		movementRepo.On("FindByDrawer", mock.Anything, drawer.ID).Return([]cashbox.Movement{*inflow, *outflow}, nil)
		drawerRepo.On("Save", mock.Anything, drawer).Return(nil)

		resp, err := service.Close(context.Background(), date, nil, nil)

		require.NoError(t, err)
		assert.True(t, resp.Closed)
		require.NotNil(t, resp.ClosingBalance)
		assert.True(t, resp.ClosingBalance.Equal(decimal.NewFromInt(1180)))
		require.Len(t, sink.entries, 1)
		assert.Equal(t, audit.ActionDrawerClosed, sink.entries[0].Action)
		assert.Equal(t, false, sink.entries[0].Detail["overridden"])
	})

	t.Run("honors an explicit closing balance override", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(1000), nil)
		require.NoError(t, err)
		inflow, err := cashbox.NewReceiptInflow(drawer.ID, uuid.New(), nil, "Recibo N° 1", decimal.NewFromInt(300), clock.now)
		require.NoError(t, err)

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		movementRepo.On("FindByDrawer", mock.Anything, drawer.ID).Return([]cashbox.Movement{*inflow}, nil)
		drawerRepo.On("Save", mock.Anything, drawer).Return(nil)

		counted := decimal.NewFromInt(1250)
		resp, err := service.Close(context.Background(), date, &counted, nil)

		require.NoError(t, err)
		assert.True(t, resp.Closed)
		require.NotNil(t, resp.ClosingBalance)
		assert.True(t, resp.ClosingBalance.Equal(counted))
		require.Len(t, sink.entries, 1)
		assert.Equal(t, true, sink.entries[0].Detail["overridden"])
	})

	t.Run("rejects closing an already closed drawer", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.Zero, nil)
		require.NoError(t, err)
		require.NoError(t, drawer.Close(decimal.Zero, clock.now, nil))

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		movementRepo.On("FindByDrawer", mock.Anything, drawer.ID).Return([]cashbox.Movement{}, nil)

		_, err = service.Close(context.Background(), date, nil, nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.Empty(t, sink.entries)
	})
}

func TestDrawerService_Reopen(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)}

	t.Run("reopens a closed drawer and audits it", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(100), nil)
		require.NoError(t, err)
		require.NoError(t, drawer.Close(decimal.NewFromInt(100), clock.now, nil))

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		drawerRepo.On("Save", mock.Anything, drawer).Return(nil)

		resp, err := service.Reopen(context.Background(), date, nil)

		require.NoError(t, err)
		assert.False(t, resp.Closed)
		assert.Nil(t, resp.ClosedAt)
		require.Len(t, sink.entries, 1)
		assert.Equal(t, audit.ActionDrawerReopened, sink.entries[0].Action)
	})
}

func TestDrawerService_Summary(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}

	t.Run("presents movements most-recent first with running balances", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(1000), nil)
		require.NoError(t, err)
		first, err := cashbox.NewReceiptInflow(drawer.ID, uuid.New(), nil, "Recibo N° 1", decimal.NewFromInt(300),
			time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		second, err := cashbox.NewReceiptInflow(drawer.ID, uuid.New(), nil, "Recibo N° 2", decimal.NewFromInt(200),
			time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		movementRepo.On("FindByDrawer", mock.Anything, drawer.ID).Return([]cashbox.Movement{*first, *second}, nil)

		summary, err := service.Summary(context.Background(), date, 0, 0)

		require.NoError(t, err)
		assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(1500)))
		assert.True(t, summary.TotalInflow.Equal(decimal.NewFromInt(500)))
		require.Len(t, summary.Movements, 2)
		assert.Equal(t, second.ID, summary.Movements[0].ID)
		assert.True(t, summary.Movements[0].Balance.Equal(decimal.NewFromInt(1500)))
		assert.True(t, summary.Movements[1].Balance.Equal(decimal.NewFromInt(1300)))
	})

	t.Run("slices a page window while keeping whole-day totals", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(1000), nil)
		require.NoError(t, err)
		movements := make([]cashbox.Movement, 5)
		for i := range movements {
			m, err := cashbox.NewReceiptInflow(drawer.ID, uuid.New(), nil, "Recibo", decimal.NewFromInt(100),
				time.Date(2026, 3, 15, 9+i, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			movements[i] = *m
		}

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		movementRepo.On("FindByDrawer", mock.Anything, drawer.ID).Return(movements, nil)

		summary, err := service.Summary(context.Background(), date, 2, 2)

		require.NoError(t, err)
		assert.Equal(t, 5, summary.MovementCount)
		assert.True(t, summary.CurrentBalance.Equal(decimal.NewFromInt(1500)))
		require.Len(t, summary.Movements, 2)
		// most-recent first: page 2 of size 2 holds the 11:00 and 10:00 entries
		assert.Equal(t, 11, summary.Movements[0].OccurredAt.Hour())
		assert.Equal(t, 10, summary.Movements[1].OccurredAt.Hour())
	})

	t.Run("clamps a page past the end to an empty window", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(1000), nil)
		require.NoError(t, err)
		m, err := cashbox.NewReceiptInflow(drawer.ID, uuid.New(), nil, "Recibo", decimal.NewFromInt(100), clock.now)
		require.NoError(t, err)

		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		movementRepo.On("FindByDrawer", mock.Anything, drawer.ID).Return([]cashbox.Movement{*m}, nil)

		summary, err := service.Summary(context.Background(), date, 9, 10)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.MovementCount)
		assert.Empty(t, summary.Movements)
	})
}

func TestDrawerService_ListOpenBefore(t *testing.T) {
	clock := fixedClock{now: time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)}

	t.Run("reports stale open drawers without closing them", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		first, err := cashbox.NewDrawer(time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), decimal.Zero, nil)
		require.NoError(t, err)
		second, err := cashbox.NewDrawer(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(50), nil)
		require.NoError(t, err)

		drawerRepo.On("FindOpenBefore", mock.Anything, clock.Today()).
			Return([]cashbox.Drawer{*first, *second}, nil)

		stale, err := service.ListOpenBefore(context.Background())

		require.NoError(t, err)
		require.Len(t, stale, 2)
		assert.Equal(t, first.ID, stale[0].ID)
		assert.False(t, stale[0].Closed)
		assert.False(t, stale[1].Closed)
		drawerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, sink.entries)
	})
}

func TestDrawerService_AddManualMovement(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}

	t.Run("reports a missing drawer as not found", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawerRepo.On("FindByDate", mock.Anything, date).Return(nil, shared.ErrNotFound)

		_, err := service.AddManualMovement(context.Background(), ManualMovementRequest{
			Date:   date,
			Kind:   "INFLOW",
			Label:  "Ajuste",
			Amount: decimal.NewFromInt(10),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("rejects a closed drawer as invalid state", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		drawer, err := cashbox.NewDrawer(date, decimal.Zero, nil)
		require.NoError(t, err)
		require.NoError(t, drawer.Close(decimal.Zero, clock.now, nil))
		drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)

		_, err = service.AddManualMovement(context.Background(), ManualMovementRequest{
			Date:   date,
			Kind:   "OUTFLOW",
			Label:  "Ajuste",
			Amount: decimal.NewFromInt(10),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestDrawerService_AutoCloseStale(t *testing.T) {
	clock := fixedClock{now: time.Date(2026, 3, 16, 0, 5, 0, 0, time.UTC)}

	t.Run("keeps sweeping after a failure", func(t *testing.T) {
		drawerRepo := new(MockDrawerRepository)
		movementRepo := new(MockMovementRepository)
		sink := &recordingSink{}
		service := newDrawerService(drawerRepo, movementRepo, clock, sink)

		failing, err := cashbox.NewDrawer(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), decimal.Zero, nil)
		require.NoError(t, err)
		closable, err := cashbox.NewDrawer(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(50), nil)
		require.NoError(t, err)

		drawerRepo.On("FindOpenBefore", mock.Anything, clock.Today()).
			Return([]cashbox.Drawer{*failing, *closable}, nil)
		drawerRepo.On("FindByDate", mock.Anything, failing.Date).Return(nil, errors.New("connection reset"))
		drawerRepo.On("FindByDate", mock.Anything, closable.Date).Return(closable, nil)
		movementRepo.On("FindByDrawer", mock.Anything, closable.ID).Return([]cashbox.Movement{}, nil)
		drawerRepo.On("Save", mock.Anything, closable).Return(nil)

		result, err := service.AutoCloseStale(context.Background())

		require.NoError(t, err)
		assert.Len(t, result.Closed, 1)
		assert.Len(t, result.Failed, 1)
		assert.Equal(t, failing.Date, result.Failed[0])
	})
}
