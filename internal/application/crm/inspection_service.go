package crm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// InspectionService schedules field inspections and records their results
type InspectionService struct {
	inspRepo       crm.InspectionRepository
	appRepo        crm.ApplicationRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInspectionService creates a new InspectionService
func NewInspectionService(
	inspRepo crm.InspectionRepository,
	appRepo crm.ApplicationRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *InspectionService {
	return &InspectionService{
		inspRepo:  inspRepo,
		appRepo:   appRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InspectionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Schedule books an inspection and moves the application along in one
// transaction
func (s *InspectionService) Schedule(ctx context.Context, req ScheduleInspectionRequest) (*InspectionResponse, error) {
	var (
		insp *crm.Inspection
		app  *crm.CustomerApplication
	)
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		app, err = s.appRepo.FindByID(ctx, req.ApplicationID)
		if err != nil {
			return err
		}
		if err := app.MarkInspectionScheduled(); err != nil {
			return err
		}

		insp, err = crm.NewInspection(req.ApplicationID, req.InspectorID, req.ScheduledAt)
		if err != nil {
			return err
		}

		if err := s.inspRepo.Create(ctx, insp); err != nil {
			return err
		}
		return s.appRepo.SaveWithLock(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, insp.GetDomainEvents())
	insp.ClearDomainEvents()
	s.publishEvents(ctx, app.GetDomainEvents())
	app.ClearDomainEvents()

	s.logger.Info("inspection scheduled",
		zap.String("inspection_id", insp.ID.String()),
		zap.String("application_id", req.ApplicationID.String()),
		zap.Time("scheduled_at", req.ScheduledAt),
	)

	resp := ToInspectionResponse(insp)
	return &resp, nil
}

// RecordResult files the inspector's findings. The emitted completion
// event puts the inspection into its approval flow.
func (s *InspectionService) RecordResult(ctx context.Context, inspectionID uuid.UUID, req RecordInspectionResultRequest) (*InspectionResponse, error) {
	insp, err := s.inspRepo.FindByID(ctx, inspectionID)
	if err != nil {
		return nil, err
	}

	if err := insp.RecordResult(req.Findings); err != nil {
		return nil, err
	}
	if err := s.inspRepo.Save(ctx, insp); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, insp.GetDomainEvents())
	insp.ClearDomainEvents()

	s.logger.Info("inspection result recorded",
		zap.String("inspection_id", insp.ID.String()),
		zap.String("application_id", insp.ApplicationID.String()),
	)

	resp := ToInspectionResponse(insp)
	return &resp, nil
}

// GetByID returns one inspection
func (s *InspectionService) GetByID(ctx context.Context, id uuid.UUID) (*InspectionResponse, error) {
	insp, err := s.inspRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInspectionResponse(insp)
	return &resp, nil
}

// ListByApplication returns an application's inspections
func (s *InspectionService) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]InspectionResponse, error) {
	inspections, err := s.inspRepo.FindByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	out := make([]InspectionResponse, 0, len(inspections))
	for _, insp := range inspections {
		out = append(out, ToInspectionResponse(insp))
	}
	return out, nil
}

func (s *InspectionService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish inspection event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
}
