package crm

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	approvalapp "github.com/ucrm/backend/internal/application/approval"
	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// MockApplicationRepository is a mock implementation of crm.ApplicationRepository
type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *crm.CustomerApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.CustomerApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindByNumber(ctx context.Context, applicationNumber string) (*crm.CustomerApplication, error) {
	args := m.Called(ctx, applicationNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerApplication), args.Error(1)
}

func (m *MockApplicationRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*crm.CustomerApplication, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CustomerApplication), args.Error(1)
}

func (m *MockApplicationRepository) List(ctx context.Context, status *crm.ApplicationStatus, filter shared.Filter) (*shared.Paginated[crm.CustomerApplication], error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[crm.CustomerApplication]), args.Error(1)
}

func (m *MockApplicationRepository) SaveWithLock(ctx context.Context, app *crm.CustomerApplication) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *MockApplicationRepository) GenerateApplicationNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockInspectionRepository is a mock implementation of crm.InspectionRepository
type MockInspectionRepository struct {
	mock.Mock
}

func (m *MockInspectionRepository) Create(ctx context.Context, insp *crm.Inspection) error {
	args := m.Called(ctx, insp)
	return args.Error(0)
}

func (m *MockInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Inspection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Inspection), args.Error(1)
}

func (m *MockInspectionRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*crm.Inspection, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*crm.Inspection), args.Error(1)
}

func (m *MockInspectionRepository) Save(ctx context.Context, insp *crm.Inspection) error {
	args := m.Called(ctx, insp)
	return args.Error(0)
}

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

// MockApprovalInitializer is a mock implementation of ApprovalInitializer
type MockApprovalInitializer struct {
	mock.Mock
}

func (m *MockApprovalInitializer) Initialize(ctx context.Context, module string, entityID uuid.UUID, department string) (*approvalapp.StateResponse, error) {
	args := m.Called(ctx, module, entityID, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approvalapp.StateResponse), args.Error(1)
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	mock.Mock
	published []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	m.published = append(m.published, events...)
	return args.Error(0)
}

// passthroughTxManager runs the function without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
