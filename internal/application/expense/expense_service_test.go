package expense

import (
	"context"
	"testing"
	"time"

	"github.com/estudio/backend/internal/domain/audit"
	"github.com/estudio/backend/internal/domain/cashbox"
	"github.com/estudio/backend/internal/domain/catalog"
	"github.com/estudio/backend/internal/domain/expense"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks and fakes
// =============================================================================

// MockExpenseRepository is a mock implementation of expense.Repository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, filter expense.Filter) ([]expense.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Count(ctx context.Context, filter expense.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) ReplaceSplits(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

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
	return args.Get(0).([]cashbox.Drawer), args.Error(1)
}

func (m *MockDrawerRepository) FindRange(ctx context.Context, from, to time.Time) ([]cashbox.Drawer, error) {
	args := m.Called(ctx, from, to)
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

// MockPaymentMethodRepository is a mock implementation of catalog.PaymentMethodRepository
type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.PaymentMethod, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.PaymentMethod, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.PaymentMethod), args.Error(1)
}

func (m *MockPaymentMethodRepository) Save(ctx context.Context, method *catalog.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *MockPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
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

type serviceFixture struct {
	expenseRepo  *MockExpenseRepository
	drawerRepo   *MockDrawerRepository
	movementRepo *MockMovementRepository
	methodRepo   *MockPaymentMethodRepository
	sink         *recordingSink
	service      *ExpenseService
}

func newFixture(clock shared.Clock) *serviceFixture {
	f := &serviceFixture{
		expenseRepo:  new(MockExpenseRepository),
		drawerRepo:   new(MockDrawerRepository),
		movementRepo: new(MockMovementRepository),
		methodRepo:   new(MockPaymentMethodRepository),
		sink:         &recordingSink{},
	}
	f.service = NewExpenseService(
		f.expenseRepo, f.drawerRepo, f.movementRepo, f.methodRepo,
		passthroughTxManager{}, clock, f.sink,
	)
	return f
}

// =============================================================================
// Tests
// =============================================================================

func TestExpenseService_Create(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)}
	methodID := uuid.New()

	validRequest := func() CreateExpenseRequest {
		return CreateExpenseRequest{
			Description: "Librería",
			Amount:      decimal.NewFromInt(150),
			Date:        date,
			Splits: []SplitRequest{
				{PaymentMethodID: methodID, Amount: decimal.NewFromInt(150)},
			},
		}
	}

	t.Run("posts one outflow per split into the existing drawer", func(t *testing.T) {
		f := newFixture(clock)
		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(1000), nil)
		require.NoError(t, err)
		method := catalog.PaymentMethod{Name: "Efectivo"}

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		f.expenseRepo.On("Save", mock.Anything, mock.AnythingOfType("*expense.Expense")).Return(nil)
		f.movementRepo.On("Save", mock.Anything, mock.MatchedBy(func(movements []*cashbox.Movement) bool {
			if len(movements) != 1 {
				return false
			}
			m := movements[0]
			return m.Kind == cashbox.MovementOutflow &&
				m.DrawerID == drawer.ID &&
				m.ExpenseID != nil &&
				m.Label == "Librería" &&
				m.Amount.Equal(decimal.NewFromInt(150))
		})).Return(nil)

		resp, err := f.service.Create(context.Background(), validRequest())

		require.NoError(t, err)
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(150)))
		require.Len(t, resp.Splits, 1)
		f.drawerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("auto-opens a missing drawer with a zero balance", func(t *testing.T) {
		f := newFixture(clock)
		method := catalog.PaymentMethod{Name: "Efectivo"}

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.drawerRepo.On("FindByDate", mock.Anything, date).Return(nil, shared.ErrNotFound)
		f.drawerRepo.On("Save", mock.Anything, mock.MatchedBy(func(d *cashbox.Drawer) bool {
			return d.OpeningBalance.IsZero() && !d.Closed && d.Date.Equal(date)
		})).Return(nil)
		f.expenseRepo.On("Save", mock.Anything, mock.AnythingOfType("*expense.Expense")).Return(nil)
		f.movementRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.Create(context.Background(), validRequest())

		require.NoError(t, err)
		f.drawerRepo.AssertExpectations(t)
	})

	t.Run("keeps the movement on the expense date under a western clock", func(t *testing.T) {
		zone := time.FixedZone("-03", -3*3600)
		f := newFixture(fixedClock{now: time.Date(2026, 3, 15, 18, 45, 0, 0, zone)})
		drawer, err := cashbox.NewDrawer(date, decimal.NewFromInt(500), nil)
		require.NoError(t, err)
		method := catalog.PaymentMethod{Name: "Efectivo"}

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		f.expenseRepo.On("Save", mock.Anything, mock.AnythingOfType("*expense.Expense")).Return(nil)
		f.movementRepo.On("Save", mock.Anything, mock.MatchedBy(func(movements []*cashbox.Movement) bool {
			if len(movements) != 1 {
				return false
			}
			occurred := movements[0].OccurredAt
			return occurred.Year() == 2026 && occurred.Month() == time.March && occurred.Day() == 15
		})).Return(nil)

		_, err = f.service.Create(context.Background(), validRequest())

		require.NoError(t, err)
		f.movementRepo.AssertExpectations(t)
	})

	t.Run("reopens a closed drawer when the caller asks for it", func(t *testing.T) {
		f := newFixture(clock)
		method := catalog.PaymentMethod{Name: "Efectivo"}
		drawer, err := cashbox.NewDrawer(date, decimal.Zero, nil)
		require.NoError(t, err)
		require.NoError(t, drawer.Close(decimal.Zero, clock.now, nil))

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)
		f.drawerRepo.On("Save", mock.Anything, mock.MatchedBy(func(d *cashbox.Drawer) bool {
			return d.ID == drawer.ID && !d.Closed
		})).Return(nil)
		f.expenseRepo.On("Save", mock.Anything, mock.AnythingOfType("*expense.Expense")).Return(nil)
		f.movementRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		req := validRequest()
		req.AutoOpenIfClosed = true
		_, err = f.service.Create(context.Background(), req)

		require.NoError(t, err)
		f.drawerRepo.AssertExpectations(t)
		f.expenseRepo.AssertExpectations(t)
	})

	t.Run("still rejects a closed drawer", func(t *testing.T) {
		f := newFixture(clock)
		method := catalog.PaymentMethod{Name: "Efectivo"}
		drawer, err := cashbox.NewDrawer(date, decimal.Zero, nil)
		require.NoError(t, err)
		require.NoError(t, drawer.Close(decimal.Zero, clock.now, nil))

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)

		_, err = f.service.Create(context.Background(), validRequest())

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		f.drawerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects splits that do not sum to the amount", func(t *testing.T) {
		f := newFixture(clock)
		method := catalog.PaymentMethod{Name: "Efectivo"}
		drawer, err := cashbox.NewDrawer(date, decimal.Zero, nil)
		require.NoError(t, err)

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.drawerRepo.On("FindByDate", mock.Anything, date).Return(drawer, nil)

		req := validRequest()
		req.Splits[0].Amount = decimal.NewFromInt(100)
		_, err = f.service.Create(context.Background(), req)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		f.expenseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestExpenseService_Update(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)}
	methodID := uuid.New()

	t.Run("replaces the splits wholesale", func(t *testing.T) {
		f := newFixture(clock)
		method := catalog.PaymentMethod{Name: "Transferencia"}
		existing, err := expense.NewExpense("Librería", decimal.NewFromInt(150), date,
			[]expense.SplitInput{{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(150)}}, nil)
		require.NoError(t, err)

		f.methodRepo.On("FindByIDs", mock.Anything, []uuid.UUID{methodID}).Return([]catalog.PaymentMethod{method}, nil)
		f.expenseRepo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		f.expenseRepo.On("ReplaceSplits", mock.Anything, existing).Return(nil)

		resp, err := f.service.Update(context.Background(), existing.ID, UpdateExpenseRequest{
			Description: "Librería y papelería",
			Amount:      decimal.NewFromInt(200),
			Splits: []SplitRequest{
				{PaymentMethodID: methodID, Amount: decimal.NewFromInt(200)},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Librería y papelería", resp.Description)
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(200)))
		require.Len(t, resp.Splits, 1)
		assert.Equal(t, methodID, resp.Splits[0].PaymentMethodID)
	})
}

func TestExpenseService_Delete(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	clock := fixedClock{now: time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)}

	t.Run("removes the expense together with its movements", func(t *testing.T) {
		f := newFixture(clock)
		existing, err := expense.NewExpense("Librería", decimal.NewFromInt(150), date,
			[]expense.SplitInput{{PaymentMethodID: uuid.New(), Amount: decimal.NewFromInt(150)}}, nil)
		require.NoError(t, err)

		f.expenseRepo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		f.movementRepo.On("DeleteByExpense", mock.Anything, existing.ID).Return(nil)
		f.expenseRepo.On("Delete", mock.Anything, existing.ID).Return(nil)

		err = f.service.Delete(context.Background(), existing.ID, nil)

		require.NoError(t, err)
		require.Len(t, f.sink.entries, 1)
		assert.Equal(t, audit.ActionExpenseDeleted, f.sink.entries[0].Action)
		f.movementRepo.AssertExpectations(t)
	})
}
