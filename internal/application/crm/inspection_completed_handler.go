package crm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	approvalapp "github.com/ucrm/backend/internal/application/approval"
	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// ApprovalInitializer starts the approval flow for an entity entering a module
type ApprovalInitializer interface {
	Initialize(ctx context.Context, module string, entityID uuid.UUID, department string) (*approvalapp.StateResponse, error)
}

// InspectionCompletedHandler puts a filed inspection into its approval flow.
// When no flow is configured for inspections, initialization pre-approves
// the findings and the verification cascade runs immediately.
type InspectionCompletedHandler struct {
	approvalService ApprovalInitializer
	logger          *zap.Logger
}

// NewInspectionCompletedHandler creates a new handler for filed inspections
func NewInspectionCompletedHandler(approvalService ApprovalInitializer, logger *zap.Logger) *InspectionCompletedHandler {
	return &InspectionCompletedHandler{
		approvalService: approvalService,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *InspectionCompletedHandler) EventTypes() []string {
	return []string{crm.EventTypeInspectionCompleted}
}

// Handle initializes the approval flow for the completed inspection
func (h *InspectionCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*crm.InspectionCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if _, err := h.approvalService.Initialize(ctx, approval.ModuleInspection.String(), completed.InspectionID, ""); err != nil {
		return fmt.Errorf("failed to initialize inspection approval: %w", err)
	}

	h.logger.Info("inspection entered approval",
		zap.String("inspection_id", completed.InspectionID.String()),
		zap.String("application_id", completed.ApplicationID.String()),
	)
	return nil
}
