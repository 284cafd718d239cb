package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// MockPayableRepository is a mock implementation of billing.PayableRepository
type MockPayableRepository struct {
	mock.Mock
}

func (m *MockPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payable), args.Error(1)
}

func (m *MockPayableRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.Payable, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payable), args.Error(1)
}

func (m *MockPayableRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]billing.Payable, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payable), args.Error(1)
}

func (m *MockPayableRepository) FindByAccountAndTypes(ctx context.Context, accountID uuid.UUID, types []billing.PayableType) ([]billing.Payable, error) {
	args := m.Called(ctx, accountID, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payable), args.Error(1)
}

func (m *MockPayableRepository) Save(ctx context.Context, payable *billing.Payable) error {
	args := m.Called(ctx, payable)
	return args.Error(0)
}

func (m *MockPayableRepository) GeneratePayableNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockCreditBalanceRepository is a mock implementation of billing.CreditBalanceRepository
type MockCreditBalanceRepository struct {
	mock.Mock
}

func (m *MockCreditBalanceRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*billing.CreditBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CreditBalance), args.Error(1)
}

func (m *MockCreditBalanceRepository) Save(ctx context.Context, cb *billing.CreditBalance) error {
	args := m.Called(ctx, cb)
	return args.Error(0)
}

func (m *MockCreditBalanceRepository) SaveWithLock(ctx context.Context, cb *billing.CreditBalance) error {
	args := m.Called(ctx, cb)
	return args.Error(0)
}

// MockSeriesRepository is a mock implementation of billing.TransactionSeriesRepository
type MockSeriesRepository struct {
	mock.Mock
}

func (m *MockSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TransactionSeries, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TransactionSeries), args.Error(1)
}

func (m *MockSeriesRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]billing.TransactionSeries, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.TransactionSeries), args.Error(1)
}

func (m *MockSeriesRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*billing.TransactionSeries, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TransactionSeries), args.Error(1)
}

func (m *MockSeriesRepository) FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*billing.TransactionSeries, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TransactionSeries), args.Error(1)
}

func (m *MockSeriesRepository) Save(ctx context.Context, series *billing.TransactionSeries) error {
	args := m.Called(ctx, series)
	return args.Error(0)
}

func (m *MockSeriesRepository) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of billing.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *billing.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByORNumber(ctx context.Context, orNumber string) (*billing.Transaction, error) {
	args := m.Called(ctx, orNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]billing.Transaction, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Transaction), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
	published []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	m.published = append(m.published, events...)
	return args.Error(0)
}

// passthroughTxManager runs the unit of work without a real database
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type paymentFixture struct {
	payableRepo *MockPayableRepository
	creditRepo  *MockCreditBalanceRepository
	seriesRepo  *MockSeriesRepository
	txRepo      *MockTransactionRepository
	publisher   *MockEventPublisher
	service     *PaymentService
	cashierID   uuid.UUID
	accountID   uuid.UUID
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payableRepo: new(MockPayableRepository),
		creditRepo:  new(MockCreditBalanceRepository),
		seriesRepo:  new(MockSeriesRepository),
		txRepo:      new(MockTransactionRepository),
		publisher:   new(MockEventPublisher),
		cashierID:   uuid.New(),
		accountID:   uuid.New(),
	}
	f.service = NewPaymentService(f.payableRepo, f.creditRepo, f.seriesRepo, f.txRepo, passthroughTxManager{}, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *paymentFixture) activeSeries(t *testing.T) *billing.TransactionSeries {
	t.Helper()
	series, err := billing.NewTransactionSeries("Cashier Series", "OR", "{PREFIX}-{NUMBER:7}", 1, 100000, f.cashierID)
	require.NoError(t, err)
	series.Activate()
	f.seriesRepo.On("FindActiveByUserForUpdate", mock.Anything, f.cashierID).Return(series, nil)
	f.seriesRepo.On("Save", mock.Anything, series).Return(nil)
	return series
}

func (f *paymentFixture) payable(t *testing.T, number string, due int64) *billing.Payable {
	t.Helper()
	p, err := billing.NewPayable(number, f.accountID, billing.PayableTypeBillDeposit, "", valueobject.NewMoneyPHP(decimal.NewFromInt(due)))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func (f *paymentFixture) expectSelection(payables ...*billing.Payable) []uuid.UUID {
	loaded := make([]billing.Payable, 0, len(payables))
	ids := make([]uuid.UUID, 0, len(payables))
	for _, p := range payables {
		loaded = append(loaded, *p)
		ids = append(ids, p.ID)
	}
	f.payableRepo.On("FindByIDs", mock.Anything, ids).Return(loaded, nil)
	f.payableRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payable")).Return(nil)
	f.txRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.Transaction")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	return ids
}

func cash(amount int64) TenderRequest {
	return TenderRequest{Type: string(billing.TenderTypeCash), Amount: decimal.NewFromInt(amount)}
}

// assertAccountingIdentity checks that tendered funds plus credit equal
// allocations plus change.
func assertAccountingIdentity(t *testing.T, resp *TransactionResponse) {
	t.Helper()
	applied := decimal.Zero
	for _, a := range resp.Allocations {
		applied = applied.Add(a.Applied)
	}
	left := resp.AmountPaid.Add(resp.CreditApplied)
	right := applied.Add(resp.ChangeAmount)
	assert.True(t, left.Equal(right), "identity violated: %s != %s", left, right)
}

func TestPaymentService_Pay_PriorityOrderAllocation(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 5000)
	p2 := f.payable(t, "PB-2", 5000)
	p3 := f.payable(t, "PB-3", 5000)
	p4 := f.payable(t, "PB-4", 5000)
	ids := f.expectSelection(p1, p2, p3, p4)

	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: ids,
		Tenders:    []TenderRequest{cash(6000)},
	})
	require.NoError(t, err)

	// 6000 across [5000,5000,5000,5000]: first settled, second partial,
	// rest untouched
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, "5000", resp.Allocations[0].Applied.String())
	assert.Equal(t, "PAID", resp.Allocations[0].Status)
	assert.Equal(t, "1000", resp.Allocations[1].Applied.String())
	assert.Equal(t, "PARTIALLY_PAID", resp.Allocations[1].Status)
	assert.Equal(t, "4000", resp.Allocations[1].Balance.String())

	assert.Equal(t, string(billing.PaymentModePartial), resp.PaymentMode)
	assert.True(t, resp.ChangeAmount.IsZero())
	assert.Equal(t, "OR-0000001", resp.ORNumber)
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_OverpaymentBecomesCredit(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 5000)
	ids := f.expectSelection(p1)

	f.creditRepo.On("FindByAccount", mock.Anything, f.accountID).Return(nil, shared.ErrNotFound)
	var savedCredit *billing.CreditBalance
	f.creditRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.CreditBalance")).Run(func(args mock.Arguments) {
		savedCredit = args.Get(1).(*billing.CreditBalance)
	}).Return(nil)

	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: ids,
		Tenders:    []TenderRequest{cash(6000)},
	})
	require.NoError(t, err)

	assert.Equal(t, "1000", resp.ChangeAmount.String())
	assert.Equal(t, "5000", resp.NetCollection.String())
	assert.Equal(t, string(billing.PaymentModeFull), resp.PaymentMode)

	require.NotNil(t, savedCredit)
	assert.Equal(t, f.accountID, savedCredit.AccountID)
	assert.Equal(t, "1000", savedCredit.Amount.String())
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_CreditOnlySettlement(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 9800)
	ids := f.expectSelection(p1)

	credit, err := billing.NewCreditBalance(f.accountID, valueobject.NewMoneyPHP(decimal.NewFromInt(9800)))
	require.NoError(t, err)
	credit.ClearDomainEvents()
	f.creditRepo.On("FindByAccount", mock.Anything, f.accountID).Return(credit, nil)
	f.creditRepo.On("Save", mock.Anything, credit).Return(nil)

	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:    f.accountID,
		PayableIDs:   ids,
		CreditAmount: decimal.NewFromInt(9800),
	})
	require.NoError(t, err)

	assert.Equal(t, "9800", resp.CreditApplied.String())
	assert.True(t, resp.AmountPaid.IsZero())
	assert.True(t, resp.ChangeAmount.IsZero())
	assert.Equal(t, string(billing.PaymentModeFull), resp.PaymentMode)
	assert.True(t, credit.Amount.IsZero())
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_CreditCappedAtSelectionBalance(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 300)
	ids := f.expectSelection(p1)

	credit, err := billing.NewCreditBalance(f.accountID, valueobject.NewMoneyPHP(decimal.NewFromInt(500)))
	require.NoError(t, err)
	credit.ClearDomainEvents()
	f.creditRepo.On("FindByAccount", mock.Anything, f.accountID).Return(credit, nil)
	f.creditRepo.On("Save", mock.Anything, credit).Return(nil)

	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:    f.accountID,
		PayableIDs:   ids,
		CreditAmount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	// Credit never turns into change: only 300 is drawn
	assert.Equal(t, "300", resp.CreditApplied.String())
	assert.True(t, resp.ChangeAmount.IsZero())
	assert.Equal(t, "200", credit.Amount.String())
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_CreditCappedAtAvailable(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 1000)
	ids := f.expectSelection(p1)

	credit, err := billing.NewCreditBalance(f.accountID, valueobject.NewMoneyPHP(decimal.NewFromInt(100)))
	require.NoError(t, err)
	credit.ClearDomainEvents()
	f.creditRepo.On("FindByAccount", mock.Anything, f.accountID).Return(credit, nil)
	f.creditRepo.On("Save", mock.Anything, credit).Return(nil)

	// Declaring more credit than the reserve holds uses what is there
	// instead of aborting the payment.
	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:    f.accountID,
		PayableIDs:   ids,
		Tenders:      []TenderRequest{cash(900)},
		CreditAmount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	assert.Equal(t, "100", resp.CreditApplied.String())
	assert.Equal(t, "900", resp.AmountPaid.String())
	assert.True(t, resp.ChangeAmount.IsZero())
	assert.Equal(t, string(billing.PaymentModeFull), resp.PaymentMode)
	assert.True(t, credit.Amount.IsZero())
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_CreditWithoutReserve(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 5000)
	f.payableRepo.On("FindByIDs", mock.Anything, []uuid.UUID{p1.ID}).Return([]billing.Payable{*p1}, nil)

	f.creditRepo.On("FindByAccount", mock.Anything, f.accountID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:    f.accountID,
		PayableIDs:   []uuid.UUID{p1.ID},
		CreditAmount: decimal.NewFromInt(2000),
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INSUFFICIENT_CREDIT", de.Code)
}

func TestPaymentService_Pay_SettledPayableSkipped(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	settled := f.payable(t, "PB-1", 1000)
	require.NoError(t, settled.ApplyPayment(valueobject.NewMoneyPHP(decimal.NewFromInt(1000)), uuid.New()))
	settled.ClearDomainEvents()
	open := f.payable(t, "PB-2", 2000)
	ids := f.expectSelection(settled, open)

	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: ids,
		Tenders:    []TenderRequest{cash(2000)},
	})
	require.NoError(t, err)

	// The settled payable gets no allocation; all funds go to the open one
	require.Len(t, resp.Allocations, 1)
	assert.Equal(t, open.ID, resp.Allocations[0].PayableID)
	assert.Equal(t, "2000", resp.Allocations[0].Applied.String())
	assert.Equal(t, string(billing.PaymentModeFull), resp.PaymentMode)
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_WithholdingReducesDueBeforeAllocation(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 10000)
	ids := f.expectSelection(p1)

	resp, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: ids,
		Tenders:    []TenderRequest{cash(9750)},
		Withholding: &WithholdingRequest{
			Type:      string(billing.EWTTypeGovernment),
			PayableID: p1.ID,
		},
	})
	require.NoError(t, err)

	// Government EWT 2.5% of 10000 leaves 9750 due; 9750 cash settles it
	assert.Equal(t, string(billing.EWTTypeGovernment), resp.EWTType)
	assert.Equal(t, "250", resp.EWTAmount.String())
	require.Len(t, resp.Allocations, 1)
	assert.Equal(t, "9750", resp.Allocations[0].Applied.String())
	assert.Equal(t, "PAID", resp.Allocations[0].Status)
	assert.Equal(t, string(billing.PaymentModeFull), resp.PaymentMode)
	assertAccountingIdentity(t, resp)
}

func TestPaymentService_Pay_NoActiveSeries(t *testing.T) {
	f := newPaymentFixture()
	f.seriesRepo.On("FindActiveByUserForUpdate", mock.Anything, f.cashierID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{uuid.New()},
		Tenders:    []TenderRequest{cash(100)},
	})
	assert.ErrorIs(t, err, billing.ErrNoActiveSeries)
	f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_SeriesExhausted(t *testing.T) {
	f := newPaymentFixture()
	series, err := billing.NewTransactionSeries("Tiny", "OR", "{NUMBER}", 1, 1, f.cashierID)
	require.NoError(t, err)
	series.Activate()
	_, err = series.IssueNext()
	require.NoError(t, err)
	f.seriesRepo.On("FindActiveByUserForUpdate", mock.Anything, f.cashierID).Return(series, nil)

	_, err = f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{uuid.New()},
		Tenders:    []TenderRequest{cash(100)},
	})
	assert.ErrorIs(t, err, billing.ErrSeriesExhausted)
	f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_Pay_ZeroFundsRejected(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, billing.ErrInvalidPaymentAmount)

	_, err = f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{uuid.New()},
		Tenders:    []TenderRequest{{Type: string(billing.TenderTypeCash), Amount: decimal.NewFromInt(-50)}},
	})
	assert.ErrorIs(t, err, billing.ErrInvalidPaymentAmount)
}

func TestPaymentService_Pay_CreditBalanceTenderNotAccepted(t *testing.T) {
	f := newPaymentFixture()

	// Credit is drawn via CreditAmount, never as a direct tender line
	_, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{uuid.New()},
		Tenders:    []TenderRequest{{Type: string(billing.TenderTypeCreditBalance), Amount: decimal.NewFromInt(100)}},
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TENDER_TYPE", de.Code)
}

func TestPaymentService_Pay_WrongAccountPayable(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	other, err := billing.NewPayable("PB-X", uuid.New(), billing.PayableTypeOther, "", valueobject.NewMoneyPHP(decimal.NewFromInt(100)))
	require.NoError(t, err)
	f.payableRepo.On("FindByIDs", mock.Anything, []uuid.UUID{other.ID}).Return([]billing.Payable{*other}, nil)

	_, err = f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{other.ID},
		Tenders:    []TenderRequest{cash(100)},
	})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "WRONG_ACCOUNT", de.Code)
}

func TestPaymentService_Pay_SequentialReceiptNumbers(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 100)
	p2 := f.payable(t, "PB-2", 100)
	f.expectSelection(p1)
	f.expectSelection(p2)

	first, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{p1.ID},
		Tenders:    []TenderRequest{cash(100)},
	})
	require.NoError(t, err)

	second, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: []uuid.UUID{p2.ID},
		Tenders:    []TenderRequest{cash(100)},
	})
	require.NoError(t, err)

	assert.Equal(t, "OR-0000001", first.ORNumber)
	assert.Equal(t, "OR-0000002", second.ORNumber)
}

func TestPaymentService_Pay_PublishesPayablePaidEvents(t *testing.T) {
	f := newPaymentFixture()
	f.activeSeries(t)

	p1 := f.payable(t, "PB-1", 1000)
	ids := f.expectSelection(p1)

	_, err := f.service.Pay(context.Background(), f.cashierID, PaymentRequest{
		AccountID:  f.accountID,
		PayableIDs: ids,
		Tenders:    []TenderRequest{cash(1000)},
	})
	require.NoError(t, err)

	var paid, recorded bool
	for _, event := range f.publisher.published {
		switch event.(type) {
		case *billing.PayablePaidEvent:
			paid = true
		case *billing.TransactionRecordedEvent:
			recorded = true
		}
	}
	assert.True(t, paid, "expected a PayablePaidEvent")
	assert.True(t, recorded, "expected a TransactionRecordedEvent")
}
