package crm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// ApplicationApprovalHandler reacts to approval outcomes for customer
// applications: completion moves the application to inspection, rejection
// declines it.
type ApplicationApprovalHandler struct {
	appRepo        crm.ApplicationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewApplicationApprovalHandler creates a new handler for application approval outcomes
func NewApplicationApprovalHandler(appRepo crm.ApplicationRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *ApplicationApprovalHandler {
	return &ApplicationApprovalHandler{
		appRepo:        appRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ApplicationApprovalHandler) EventTypes() []string {
	return []string{approval.EventTypeApprovalCompleted, approval.EventTypeApprovalRejected}
}

// Handle advances or declines the application per the approval outcome
func (h *ApplicationApprovalHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *approval.CompletedEvent:
		if e.Module != approval.ModuleCustomerApplication {
			return nil
		}
		return h.advance(ctx, e)
	case *approval.RejectedEvent:
		if e.Module != approval.ModuleCustomerApplication {
			return nil
		}
		return h.decline(ctx, e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *ApplicationApprovalHandler) advance(ctx context.Context, e *approval.CompletedEvent) error {
	app, err := h.appRepo.FindByID(ctx, e.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load application %s: %w", e.EntityID, err)
	}
	// A reset-and-reapproved flow can complete again after the
	// application already moved on
	if app.Status != crm.ApplicationStatusPendingCCDApproval {
		h.logger.Debug("application already past CCD approval, ignoring completion",
			zap.String("application_id", app.ID.String()),
			zap.String("status", app.Status.String()),
		)
		return nil
	}

	if err := app.MarkForInspection(); err != nil {
		return err
	}
	if err := h.appRepo.SaveWithLock(ctx, app); err != nil {
		return err
	}
	h.publish(ctx, app)

	h.logger.Info("application cleared CCD approval",
		zap.String("application_id", app.ID.String()),
		zap.String("application_number", app.ApplicationNumber),
	)
	return nil
}

func (h *ApplicationApprovalHandler) decline(ctx context.Context, e *approval.RejectedEvent) error {
	app, err := h.appRepo.FindByID(ctx, e.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load application %s: %w", e.EntityID, err)
	}
	if app.Status != crm.ApplicationStatusPendingCCDApproval {
		return nil
	}

	if err := app.Reject(fmt.Sprintf("Rejected at CCD approval step %d", e.StepOrder)); err != nil {
		return err
	}
	if err := h.appRepo.SaveWithLock(ctx, app); err != nil {
		return err
	}
	h.publish(ctx, app)

	h.logger.Info("application rejected at CCD approval",
		zap.String("application_id", app.ID.String()),
		zap.Int("step_order", e.StepOrder),
	)
	return nil
}

func (h *ApplicationApprovalHandler) publish(ctx context.Context, app *crm.CustomerApplication) {
	if h.eventPublisher == nil {
		return
	}
	for _, event := range app.GetDomainEvents() {
		if err := h.eventPublisher.Publish(ctx, event); err != nil {
			h.logger.Error("failed to publish application event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	app.ClearDomainEvents()
}
