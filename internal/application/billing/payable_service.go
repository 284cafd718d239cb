package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// PayableService books and queries amounts owed by accounts
type PayableService struct {
	payableRepo    billing.PayableRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPayableService creates a new PayableService
func NewPayableService(payableRepo billing.PayableRepository, logger *zap.Logger) *PayableService {
	return &PayableService{
		payableRepo: payableRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PayableService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create books a new payable against an account
func (s *PayableService) Create(ctx context.Context, req CreatePayableRequest) (*PayableResponse, error) {
	number, err := s.payableRepo.GeneratePayableNumber(ctx)
	if err != nil {
		return nil, err
	}

	payable, err := billing.NewPayable(number, req.AccountID, billing.PayableType(req.Type), req.Description, valueobject.NewMoneyPHP(req.AmountDue))
	if err != nil {
		return nil, err
	}

	if err := s.payableRepo.Save(ctx, payable); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payable)

	s.logger.Info("payable created",
		zap.String("payable_number", payable.PayableNumber),
		zap.String("account_id", req.AccountID.String()),
		zap.String("type", req.Type),
		zap.String("amount_due", payable.TotalAmountDue.String()),
	)

	resp := ToPayableResponse(payable)
	return &resp, nil
}

// GetByID returns one payable
func (s *PayableService) GetByID(ctx context.Context, id uuid.UUID) (*PayableResponse, error) {
	payable, err := s.payableRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPayableResponse(payable)
	return &resp, nil
}

// ListByAccount returns an account's payables
func (s *PayableService) ListByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]PayableResponse, error) {
	payables, err := s.payableRepo.FindByAccount(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]PayableResponse, 0, len(payables))
	for i := range payables {
		out = append(out, ToPayableResponse(&payables[i]))
	}
	return out, nil
}

func (s *PayableService) publishEvents(ctx context.Context, payable *billing.Payable) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range payable.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish payable event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	payable.ClearDomainEvents()
}
