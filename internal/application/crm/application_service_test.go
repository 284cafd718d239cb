package crm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// testApplication builds an application fast-forwarded to the given status
// with its creation events cleared.
func testApplication(t *testing.T, status crm.ApplicationStatus) *crm.CustomerApplication {
	t.Helper()

	app, err := crm.NewCustomerApplication("APP-20260901-00001", "Juan Dela Cruz",
		"123 Mabini St, Quezon City", "09171234567", "juan@example.com", crm.ConnectionTypeResidential)
	require.NoError(t, err)

	advances := []func() error{
		app.MarkForInspection,
		app.MarkInspectionScheduled,
		app.MarkVerified,
		app.MarkForSigning,
		app.MarkContractSigned,
		app.MarkEnergized,
	}
	for _, advance := range advances {
		if app.Status == status {
			break
		}
		require.NoError(t, advance())
	}
	require.Equal(t, status, app.Status)

	app.ClearDomainEvents()
	return app
}

func TestApplicationService_Create(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	initializer := new(MockApprovalInitializer)
	publisher := new(MockEventPublisher)

	service := NewApplicationService(appRepo, initializer, zap.NewNop())
	service.SetEventPublisher(publisher)

	appRepo.On("GenerateApplicationNumber", mock.Anything).Return("APP-20260901-00042", nil)
	appRepo.On("Create", mock.Anything, mock.AnythingOfType("*crm.CustomerApplication")).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	initializer.On("Initialize", mock.Anything, "CUSTOMER_APPLICATION", mock.Anything, "").Return(nil, nil)

	// The pre-approval cascade runs synchronously, so the reload after
	// initialization can already see the advanced status
	reloaded := testApplication(t, crm.ApplicationStatusForInspection)
	appRepo.On("FindByID", mock.Anything, mock.Anything).Return(reloaded, nil)

	resp, err := service.Create(context.Background(), CreateApplicationRequest{
		ApplicantName:  "Juan Dela Cruz",
		Address:        "123 Mabini St, Quezon City",
		ContactNumber:  "09171234567",
		Email:          "juan@example.com",
		ConnectionType: "RESIDENTIAL",
	})

	require.NoError(t, err)
	assert.Equal(t, "FOR_INSPECTION", resp.Status)
	initializer.AssertCalled(t, "Initialize", mock.Anything, "CUSTOMER_APPLICATION", mock.Anything, "")
	assert.NotEmpty(t, publisher.published)
}

func TestApplicationService_Create_InvalidConnectionType(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	initializer := new(MockApprovalInitializer)

	service := NewApplicationService(appRepo, initializer, zap.NewNop())

	appRepo.On("GenerateApplicationNumber", mock.Anything).Return("APP-20260901-00042", nil)

	_, err := service.Create(context.Background(), CreateApplicationRequest{
		ApplicantName:  "Juan Dela Cruz",
		Address:        "123 Mabini St",
		ConnectionType: "MIXED_USE",
	})

	require.Error(t, err)
	appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	initializer.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_List_InvalidStatus(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	service := NewApplicationService(appRepo, new(MockApprovalInitializer), zap.NewNop())

	_, err := service.List(context.Background(), "IN_LIMBO", shared.Filter{Page: 1, PageSize: 20})

	require.Error(t, err)
	domainErr, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	appRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_SignContract(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	publisher := new(MockEventPublisher)
	service := NewApplicationService(appRepo, new(MockApprovalInitializer), zap.NewNop())
	service.SetEventPublisher(publisher)

	app := testApplication(t, crm.ApplicationStatusForSigning)
	appRepo.On("FindByID", mock.Anything, app.ID).Return(app, nil)
	appRepo.On("SaveWithLock", mock.Anything, app).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.SignContract(context.Background(), app.ID)

	require.NoError(t, err)
	assert.Equal(t, "FOR_ENERGIZATION", resp.Status)
	assert.NotNil(t, resp.SignedAt)
}

func TestApplicationService_Energize_WrongStatus(t *testing.T) {
	appRepo := new(MockApplicationRepository)
	service := NewApplicationService(appRepo, new(MockApprovalInitializer), zap.NewNop())

	app := testApplication(t, crm.ApplicationStatusForPayment)
	appRepo.On("FindByID", mock.Anything, app.ID).Return(app, nil)

	_, err := service.Energize(context.Background(), app.ID)

	require.Error(t, err)
	appRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}
