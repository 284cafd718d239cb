package crm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// ApplicationService handles customer application intake and lifecycle
type ApplicationService struct {
	appRepo         crm.ApplicationRepository
	approvalService ApprovalInitializer
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo crm.ApplicationRepository,
	approvalService ApprovalInitializer,
	logger *zap.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:         appRepo,
		approvalService: approvalService,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ApplicationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create files a new application and puts it into the CCD approval flow.
// When no flow is configured the bypass pre-approves it and the
// completion cascade moves it straight to inspection.
func (s *ApplicationService) Create(ctx context.Context, req CreateApplicationRequest) (*ApplicationResponse, error) {
	number, err := s.appRepo.GenerateApplicationNumber(ctx)
	if err != nil {
		return nil, err
	}

	app, err := crm.NewCustomerApplication(number, req.ApplicantName, req.Address, req.ContactNumber, req.Email, crm.ConnectionType(req.ConnectionType))
	if err != nil {
		return nil, err
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, app)

	if _, err := s.approvalService.Initialize(ctx, approval.ModuleCustomerApplication.String(), app.ID, ""); err != nil {
		return nil, err
	}

	s.logger.Info("customer application filed",
		zap.String("application_number", app.ApplicationNumber),
		zap.String("applicant", app.ApplicantName),
		zap.String("connection_type", req.ConnectionType),
	)

	// Reload: the approval cascade may have advanced the status already
	app, err = s.appRepo.FindByID(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	resp := ToApplicationResponse(app)
	return &resp, nil
}

// GetByID returns one application
func (s *ApplicationService) GetByID(ctx context.Context, id uuid.UUID) (*ApplicationResponse, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToApplicationResponse(app)
	return &resp, nil
}

// GetByNumber returns one application by its application number
func (s *ApplicationService) GetByNumber(ctx context.Context, number string) (*ApplicationResponse, error) {
	app, err := s.appRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	resp := ToApplicationResponse(app)
	return &resp, nil
}

// List returns applications, optionally filtered by status
func (s *ApplicationService) List(ctx context.Context, status string, filter shared.Filter) (*shared.Paginated[ApplicationResponse], error) {
	var statusFilter *crm.ApplicationStatus
	if status != "" {
		st := crm.ApplicationStatus(status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown application status")
		}
		statusFilter = &st
	}

	page, err := s.appRepo.List(ctx, statusFilter, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ApplicationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToApplicationResponse(&page.Items[i]))
	}
	out := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &out, nil
}

// SignContract records the signed service contract, moving the
// application to energization
func (s *ApplicationService) SignContract(ctx context.Context, id uuid.UUID) (*ApplicationResponse, error) {
	return s.mutate(ctx, id, func(app *crm.CustomerApplication) error {
		return app.MarkContractSigned()
	})
}

// Energize completes the application once the connection is live
func (s *ApplicationService) Energize(ctx context.Context, id uuid.UUID) (*ApplicationResponse, error) {
	return s.mutate(ctx, id, func(app *crm.CustomerApplication) error {
		return app.MarkEnergized()
	})
}

func (s *ApplicationService) mutate(ctx context.Context, id uuid.UUID, fn func(app *crm.CustomerApplication) error) (*ApplicationResponse, error) {
	app, err := s.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(app); err != nil {
		return nil, err
	}
	if err := s.appRepo.SaveWithLock(ctx, app); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, app)

	resp := ToApplicationResponse(app)
	return &resp, nil
}

func (s *ApplicationService) publishEvents(ctx context.Context, app *crm.CustomerApplication) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range app.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish application event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	app.ClearDomainEvents()
}
