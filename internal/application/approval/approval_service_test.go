package approval

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/shared"
)

// MockFlowRepository is a mock implementation of approval.FlowRepository
type MockFlowRepository struct {
	mock.Mock
}

func (m *MockFlowRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.Flow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approval.Flow), args.Error(1)
}

func (m *MockFlowRepository) FindByModule(ctx context.Context, module approval.Module, department string) (*approval.Flow, error) {
	args := m.Called(ctx, module, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approval.Flow), args.Error(1)
}

func (m *MockFlowRepository) FindAll(ctx context.Context) ([]approval.Flow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]approval.Flow), args.Error(1)
}

func (m *MockFlowRepository) Save(ctx context.Context, flow *approval.Flow) error {
	args := m.Called(ctx, flow)
	return args.Error(0)
}

func (m *MockFlowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStateRepository is a mock implementation of approval.StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.State, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approval.State), args.Error(1)
}

func (m *MockStateRepository) FindByEntity(ctx context.Context, module approval.Module, entityID uuid.UUID) (*approval.State, error) {
	args := m.Called(ctx, module, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*approval.State), args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, state *approval.State) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) SaveWithLock(ctx context.Context, state *approval.State) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// MockRecordRepository is a mock implementation of approval.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *approval.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) FindByEntity(ctx context.Context, module approval.Module, entityID uuid.UUID) ([]approval.Record, error) {
	args := m.Called(ctx, module, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]approval.Record), args.Error(1)
}

// MockAuthorizer is a mock implementation of approval.Authorizer
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) CanApproveStep(ctx context.Context, actor approval.Actor, step approval.FlowStep) (bool, error) {
	args := m.Called(ctx, actor, step)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizer) CanReset(ctx context.Context, actor approval.Actor) (bool, error) {
	args := m.Called(ctx, actor)
	return args.Bool(0), args.Error(1)
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

type approvalFixture struct {
	flowRepo   *MockFlowRepository
	stateRepo  *MockStateRepository
	recordRepo *MockRecordRepository
	authorizer *MockAuthorizer
	publisher  *MockEventPublisher
	service    *ApprovalService
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		flowRepo:   new(MockFlowRepository),
		stateRepo:  new(MockStateRepository),
		recordRepo: new(MockRecordRepository),
		authorizer: new(MockAuthorizer),
		publisher:  new(MockEventPublisher),
	}
	f.service = NewApprovalService(f.flowRepo, f.stateRepo, f.recordRepo, f.authorizer, passthroughTxManager{}, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

func testFlow(t *testing.T, module approval.Module, stepCount int) *approval.Flow {
	t.Helper()
	steps := make([]approval.StepInput, 0, stepCount)
	for i := 0; i < stepCount; i++ {
		roleID := uuid.New()
		steps = append(steps, approval.StepInput{RoleID: &roleID})
	}
	flow, err := approval.NewFlow("CCD Review", module, "", steps)
	require.NoError(t, err)
	return flow
}

func testState(t *testing.T, flow *approval.Flow, entityID uuid.UUID) *approval.State {
	t.Helper()
	state, err := approval.NewState(flow.Module, entityID, flow)
	require.NoError(t, err)
	state.ClearDomainEvents()
	return state
}

func TestApprovalService_Initialize_WithFlow(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 3)

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(nil, shared.ErrNotFound)
	f.flowRepo.On("FindByModule", mock.Anything, approval.ModuleCustomerApplication, "CCD").Return(flow, nil)
	f.stateRepo.On("Save", mock.Anything, mock.AnythingOfType("*approval.State")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Initialize(context.Background(), "CUSTOMER_APPLICATION", entityID, "CCD")
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, 1, resp.CurrentOrder)
	assert.Equal(t, 3, resp.TotalSteps)
	assert.False(t, resp.PreApproved)
	assert.Equal(t, 0, resp.Progress)
	f.stateRepo.AssertExpectations(t)
}

func TestApprovalService_Initialize_NoFlowPreApproves(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleInspection, entityID).Return(nil, shared.ErrNotFound)
	f.flowRepo.On("FindByModule", mock.Anything, approval.ModuleInspection, "").Return(nil, shared.ErrNotFound)
	f.stateRepo.On("Save", mock.Anything, mock.AnythingOfType("*approval.State")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Initialize(context.Background(), "INSPECTION", entityID, "")
	require.NoError(t, err)

	assert.Equal(t, "APPROVED", resp.Status)
	assert.True(t, resp.PreApproved)
	assert.Equal(t, 100, resp.Progress)

	// The completion cascade still fires on the bypass
	require.Len(t, f.publisher.published, 1)
	_, ok := f.publisher.published[0].(*approval.CompletedEvent)
	assert.True(t, ok)
}

func TestApprovalService_Initialize_InvalidModule(t *testing.T) {
	f := newApprovalFixture()

	_, err := f.service.Initialize(context.Background(), "SALES_ORDER", uuid.New(), "")
	assert.ErrorIs(t, err, approval.ErrInvalidModelType)
}

func TestApprovalService_Initialize_AlreadyInitialized(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleInspection, 2)
	existing := testState(t, flow, entityID)

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleInspection, entityID).Return(existing, nil)

	_, err := f.service.Initialize(context.Background(), "INSPECTION", entityID, "")
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_INITIALIZED", de.Code)
}

func TestApprovalService_Approve_AdvancesStep(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 2)
	state := testState(t, flow, entityID)
	actor := approval.Actor{ID: uuid.New(), Name: "Reviewer", RoleIDs: []uuid.UUID{*flow.Steps[0].RoleID}}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(state, nil)
	f.flowRepo.On("FindByID", mock.Anything, flow.ID).Return(flow, nil)
	f.authorizer.On("CanApproveStep", mock.Anything, actor, flow.Steps[0]).Return(true, nil)
	f.stateRepo.On("SaveWithLock", mock.Anything, state).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.AnythingOfType("*approval.Record")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Approve(context.Background(), "CUSTOMER_APPLICATION", entityID, actor, "looks good")
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, 2, resp.CurrentOrder)
	assert.Equal(t, 50, resp.Progress)
	f.recordRepo.AssertExpectations(t)
}

func TestApprovalService_Approve_LastStepCompletes(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 1)
	state := testState(t, flow, entityID)
	actor := approval.Actor{ID: uuid.New(), Name: "Manager"}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(state, nil)
	f.flowRepo.On("FindByID", mock.Anything, flow.ID).Return(flow, nil)
	f.authorizer.On("CanApproveStep", mock.Anything, actor, mock.Anything).Return(true, nil)
	f.stateRepo.On("SaveWithLock", mock.Anything, state).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Approve(context.Background(), "CUSTOMER_APPLICATION", entityID, actor, "")
	require.NoError(t, err)

	assert.Equal(t, "APPROVED", resp.Status)
	assert.Equal(t, 100, resp.Progress)

	require.Len(t, f.publisher.published, 1)
	_, ok := f.publisher.published[0].(*approval.CompletedEvent)
	assert.True(t, ok)
}

func TestApprovalService_Approve_WrongActorForbidden(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 2)
	state := testState(t, flow, entityID)
	actor := approval.Actor{ID: uuid.New(), Name: "Outsider"}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(state, nil)
	f.flowRepo.On("FindByID", mock.Anything, flow.ID).Return(flow, nil)
	f.authorizer.On("CanApproveStep", mock.Anything, actor, mock.Anything).Return(false, nil)

	_, err := f.service.Approve(context.Background(), "CUSTOMER_APPLICATION", entityID, actor, "")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// Nothing persisted, nothing published
	f.stateRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.recordRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.published)
}

func TestApprovalService_Approve_NoStateIsRecoverable(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	actor := approval.Actor{ID: uuid.New()}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleInspection, entityID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Approve(context.Background(), "INSPECTION", entityID, actor, "")
	assert.ErrorIs(t, err, approval.ErrNoActiveApprovalFlow)
}

func TestApprovalService_Approve_PreApprovedStateIsTerminal(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	state, err := approval.NewPreApprovedState(approval.ModuleInspection, entityID)
	require.NoError(t, err)
	state.ClearDomainEvents()
	actor := approval.Actor{ID: uuid.New(), Name: "Reviewer"}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleInspection, entityID).Return(state, nil)

	_, err = f.service.Approve(context.Background(), "INSPECTION", entityID, actor, "")
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", de.Code)

	// The bypass state carries no flow id; no flow lookup happens
	f.flowRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.stateRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestApprovalService_Reject_AlreadyApprovedFlowIsTerminal(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 1)
	state := testState(t, flow, entityID)
	_, err := state.Advance()
	require.NoError(t, err)
	state.ClearDomainEvents()
	actor := approval.Actor{ID: uuid.New(), Name: "Reviewer"}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(state, nil)

	_, err = f.service.Reject(context.Background(), "CUSTOMER_APPLICATION", entityID, actor, "too late")
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATE", de.Code)
	f.recordRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApprovalService_Reject_HaltsFlow(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 3)
	state := testState(t, flow, entityID)
	actor := approval.Actor{ID: uuid.New(), Name: "Reviewer"}

	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(state, nil)
	f.flowRepo.On("FindByID", mock.Anything, flow.ID).Return(flow, nil)
	f.authorizer.On("CanApproveStep", mock.Anything, actor, mock.Anything).Return(true, nil)
	f.stateRepo.On("SaveWithLock", mock.Anything, state).Return(nil)
	f.recordRepo.On("Create", mock.Anything, mock.AnythingOfType("*approval.Record")).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Reject(context.Background(), "CUSTOMER_APPLICATION", entityID, actor, "incomplete docs")
	require.NoError(t, err)

	assert.Equal(t, "REJECTED", resp.Status)
	// Pointer stays where the rejection happened
	assert.Equal(t, 1, resp.CurrentOrder)

	require.Len(t, f.publisher.published, 1)
	_, ok := f.publisher.published[0].(*approval.RejectedEvent)
	assert.True(t, ok)
}

func TestApprovalService_Reset_RequiresElevatedRole(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	actor := approval.Actor{ID: uuid.New()}

	f.authorizer.On("CanReset", mock.Anything, actor).Return(false, nil)

	_, err := f.service.Reset(context.Background(), "CUSTOMER_APPLICATION", entityID, actor)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestApprovalService_Reset_ReturnsToStepOne(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 2)
	state := testState(t, flow, entityID)
	_, err := state.Advance()
	require.NoError(t, err)
	require.NoError(t, state.Reject())
	state.ClearDomainEvents()
	actor := approval.Actor{ID: uuid.New(), Name: "Admin"}

	f.authorizer.On("CanReset", mock.Anything, actor).Return(true, nil)
	f.stateRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return(state, nil)
	f.stateRepo.On("SaveWithLock", mock.Anything, state).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Reset(context.Background(), "CUSTOMER_APPLICATION", entityID, actor)
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, 1, resp.CurrentOrder)
	assert.Equal(t, 0, resp.Progress)
}

func TestApprovalService_History(t *testing.T) {
	f := newApprovalFixture()
	entityID := uuid.New()
	flow := testFlow(t, approval.ModuleCustomerApplication, 2)
	state := testState(t, flow, entityID)

	rec1, err := approval.NewRecord(state, uuid.New(), "First Reviewer", approval.DecisionApproved, "")
	require.NoError(t, err)
	_, err = state.Advance()
	require.NoError(t, err)
	rec2, err := approval.NewRecord(state, uuid.New(), "Second Reviewer", approval.DecisionRejected, "specs missing")
	require.NoError(t, err)

	f.recordRepo.On("FindByEntity", mock.Anything, approval.ModuleCustomerApplication, entityID).Return([]approval.Record{*rec1, *rec2}, nil)

	history, err := f.service.History(context.Background(), "CUSTOMER_APPLICATION", entityID)
	require.NoError(t, err)

	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].StepOrder)
	assert.Equal(t, "APPROVED", history[0].Decision)
	assert.Equal(t, 2, history[1].StepOrder)
	assert.Equal(t, "REJECTED", history[1].Decision)
}
