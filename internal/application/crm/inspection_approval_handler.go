package crm

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// energizationCharges lists the standard charges billed to an applicant once
// the inspection findings are approved, keyed by connection type. Government
// connections are billed at the commercial tariff.
var energizationCharges = map[crm.ConnectionType]map[billing.PayableType]decimal.Decimal{
	crm.ConnectionTypeResidential: {
		billing.PayableTypeBillDeposit:  decimal.NewFromInt(1000),
		billing.PayableTypeMaterialCost: decimal.NewFromInt(3500),
		billing.PayableTypeLaborCost:    decimal.NewFromInt(1500),
	},
	crm.ConnectionTypeCommercial: {
		billing.PayableTypeBillDeposit:  decimal.NewFromInt(2500),
		billing.PayableTypeMaterialCost: decimal.NewFromInt(8000),
		billing.PayableTypeLaborCost:    decimal.NewFromInt(3000),
	},
	crm.ConnectionTypeIndustrial: {
		billing.PayableTypeBillDeposit:  decimal.NewFromInt(10000),
		billing.PayableTypeMaterialCost: decimal.NewFromInt(25000),
		billing.PayableTypeLaborCost:    decimal.NewFromInt(8000),
	},
	crm.ConnectionTypeGovernment: {
		billing.PayableTypeBillDeposit:  decimal.NewFromInt(2500),
		billing.PayableTypeMaterialCost: decimal.NewFromInt(8000),
		billing.PayableTypeLaborCost:    decimal.NewFromInt(3000),
	},
}

var chargeDescriptions = map[billing.PayableType]string{
	billing.PayableTypeBillDeposit:  "Bill deposit",
	billing.PayableTypeMaterialCost: "Material cost",
	billing.PayableTypeLaborCost:    "Labor cost",
}

// InspectionApprovalHandler reacts to approval outcomes for inspection
// findings: completion verifies the application and bills the energization
// charges, rejection declines the application.
type InspectionApprovalHandler struct {
	inspRepo       crm.InspectionRepository
	appRepo        crm.ApplicationRepository
	payableRepo    billing.PayableRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewInspectionApprovalHandler creates a new handler for inspection approval outcomes
func NewInspectionApprovalHandler(
	inspRepo crm.InspectionRepository,
	appRepo crm.ApplicationRepository,
	payableRepo billing.PayableRepository,
	txManager shared.TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *InspectionApprovalHandler {
	return &InspectionApprovalHandler{
		inspRepo:       inspRepo,
		appRepo:        appRepo,
		payableRepo:    payableRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *InspectionApprovalHandler) EventTypes() []string {
	return []string{approval.EventTypeApprovalCompleted, approval.EventTypeApprovalRejected}
}

// Handle verifies or declines the application per the inspection approval outcome
func (h *InspectionApprovalHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *approval.CompletedEvent:
		if e.Module != approval.ModuleInspection {
			return nil
		}
		return h.verify(ctx, e)
	case *approval.RejectedEvent:
		if e.Module != approval.ModuleInspection {
			return nil
		}
		return h.decline(ctx, e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// verify moves the application to payment and creates the energization
// payables. The application save and the payable inserts commit together.
func (h *InspectionApprovalHandler) verify(ctx context.Context, e *approval.CompletedEvent) error {
	inspection, err := h.inspRepo.FindByID(ctx, e.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load inspection %s: %w", e.EntityID, err)
	}
	app, err := h.appRepo.FindByID(ctx, inspection.ApplicationID)
	if err != nil {
		return fmt.Errorf("failed to load application %s: %w", inspection.ApplicationID, err)
	}
	if app.Status != crm.ApplicationStatusInspectionScheduled {
		h.logger.Debug("application not awaiting verification, ignoring completion",
			zap.String("application_id", app.ID.String()),
			zap.String("status", app.Status.String()),
		)
		return nil
	}

	if err := app.MarkVerified(); err != nil {
		return err
	}

	charges, ok := energizationCharges[app.ConnectionType]
	if !ok {
		return shared.NewDomainError("UNKNOWN_CONNECTION_TYPE",
			fmt.Sprintf("No charge schedule for connection type %s", app.ConnectionType))
	}

	payables := make([]*billing.Payable, 0, len(billing.EnergizationGroup))
	err = h.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, payableType := range billing.EnergizationGroup {
			number, err := h.payableRepo.GeneratePayableNumber(txCtx)
			if err != nil {
				return err
			}
			payable, err := billing.NewPayable(number, app.AccountID, payableType,
				chargeDescriptions[payableType], valueobject.NewMoneyPHP(charges[payableType]))
			if err != nil {
				return err
			}
			if err := h.payableRepo.Save(txCtx, payable); err != nil {
				return err
			}
			payables = append(payables, payable)
		}
		return h.appRepo.SaveWithLock(txCtx, app)
	})
	if err != nil {
		return err
	}

	h.publish(ctx, app.GetDomainEvents())
	app.ClearDomainEvents()
	for _, payable := range payables {
		h.publish(ctx, payable.GetDomainEvents())
		payable.ClearDomainEvents()
	}

	h.logger.Info("application verified, energization charges billed",
		zap.String("application_id", app.ID.String()),
		zap.String("account_id", app.AccountID.String()),
		zap.String("connection_type", string(app.ConnectionType)),
	)
	return nil
}

func (h *InspectionApprovalHandler) decline(ctx context.Context, e *approval.RejectedEvent) error {
	inspection, err := h.inspRepo.FindByID(ctx, e.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load inspection %s: %w", e.EntityID, err)
	}
	app, err := h.appRepo.FindByID(ctx, inspection.ApplicationID)
	if err != nil {
		return fmt.Errorf("failed to load application %s: %w", inspection.ApplicationID, err)
	}
	if app.Status != crm.ApplicationStatusInspectionScheduled {
		return nil
	}

	if err := app.Reject(fmt.Sprintf("Inspection findings rejected at step %d", e.StepOrder)); err != nil {
		return err
	}
	if err := h.appRepo.SaveWithLock(ctx, app); err != nil {
		return err
	}
	h.publish(ctx, app.GetDomainEvents())
	app.ClearDomainEvents()

	h.logger.Info("application rejected on inspection findings",
		zap.String("application_id", app.ID.String()),
		zap.Int("step_order", e.StepOrder),
	)
	return nil
}

func (h *InspectionApprovalHandler) publish(ctx context.Context, events []shared.DomainEvent) {
	if h.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := h.eventPublisher.Publish(ctx, event); err != nil {
			h.logger.Error("failed to publish event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
}
