package crm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// SettlementHandler watches energization-group payments. Once the bill
// deposit, material cost and labor cost are all paid, the account's
// application moves to contract signing.
type SettlementHandler struct {
	appRepo        crm.ApplicationRepository
	payableRepo    billing.PayableRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSettlementHandler creates a new handler for settled payables
func NewSettlementHandler(appRepo crm.ApplicationRepository, payableRepo billing.PayableRepository, eventPublisher shared.EventPublisher, logger *zap.Logger) *SettlementHandler {
	return &SettlementHandler{
		appRepo:        appRepo,
		payableRepo:    payableRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SettlementHandler) EventTypes() []string {
	return []string{billing.EventTypePayablePaid}
}

// Handle advances the account's application once the energization group is settled
func (h *SettlementHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*billing.PayablePaidEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	if !paid.PayableType.InEnergizationGroup() {
		return nil
	}

	app, err := h.appRepo.FindByAccountID(ctx, paid.AccountID)
	if err != nil {
		// Energization payables can exist for accounts without an open
		// application, e.g. reconnections billed directly
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load application for account %s: %w", paid.AccountID, err)
	}
	if app.Status != crm.ApplicationStatusForPayment {
		return nil
	}

	payables, err := h.payableRepo.FindByAccountAndTypes(ctx, paid.AccountID, billing.EnergizationGroup)
	if err != nil {
		return fmt.Errorf("failed to load energization payables for account %s: %w", paid.AccountID, err)
	}
	if !energizationGroupSettled(payables) {
		return nil
	}

	if err := app.MarkForSigning(); err != nil {
		return err
	}
	if err := h.appRepo.SaveWithLock(ctx, app); err != nil {
		return err
	}
	if h.eventPublisher != nil {
		for _, ev := range app.GetDomainEvents() {
			if err := h.eventPublisher.Publish(ctx, ev); err != nil {
				h.logger.Error("failed to publish application event",
					zap.String("event_type", ev.EventType()),
					zap.Error(err),
				)
			}
		}
		app.ClearDomainEvents()
	}

	h.logger.Info("energization charges settled, application ready for signing",
		zap.String("application_id", app.ID.String()),
		zap.String("account_id", paid.AccountID.String()),
	)
	return nil
}

// energizationGroupSettled requires one paid payable per group type. A
// missing type means billing is incomplete, not settled.
func energizationGroupSettled(payables []billing.Payable) bool {
	settled := make(map[billing.PayableType]bool, len(billing.EnergizationGroup))
	for _, p := range payables {
		if p.IsPaid() {
			settled[p.Type] = true
		}
	}
	for _, t := range billing.EnergizationGroup {
		if !settled[t] {
			return false
		}
	}
	return true
}
