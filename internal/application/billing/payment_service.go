package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// PaymentService settles payables. One call allocates the tendered funds
// plus any requested credit across the caller-selected payables in the
// order given, issues the receipt number from the cashier's active
// series, and records the transaction. Everything happens in a single
// database transaction; overpayment becomes account credit.
type PaymentService struct {
	payableRepo    billing.PayableRepository
	creditRepo     billing.CreditBalanceRepository
	seriesRepo     billing.TransactionSeriesRepository
	txRepo         billing.TransactionRepository
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	tracer         trace.Tracer
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	payableRepo billing.PayableRepository,
	creditRepo billing.CreditBalanceRepository,
	seriesRepo billing.TransactionSeriesRepository,
	txRepo billing.TransactionRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payableRepo: payableRepo,
		creditRepo:  creditRepo,
		seriesRepo:  seriesRepo,
		txRepo:      txRepo,
		txManager:   txManager,
		logger:      logger,
		tracer:      otel.Tracer("application/billing"),
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Pay settles the selected payables with the tendered funds.
// req.PayableIDs is the allocation priority order; payables earlier in
// the list are settled before later ones see any funds.
func (s *PaymentService) Pay(ctx context.Context, cashierID uuid.UUID, req PaymentRequest) (*TransactionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.Pay",
		trace.WithAttributes(
			attribute.String("account_id", req.AccountID.String()),
			attribute.Int("payable_count", len(req.PayableIDs)),
		))
	defer span.End()

	if err := validatePaymentRequest(req); err != nil {
		return nil, err
	}

	var (
		tx         *billing.Transaction
		payables   []*billing.Payable
		credit     *billing.CreditBalance
		payableMap map[uuid.UUID]*billing.Payable
	)

	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		// Receipt number first: the row lock on the active series
		// serializes concurrent payments by the same cashier.
		series, err := s.seriesRepo.FindActiveByUserForUpdate(ctx, cashierID)
		if errors.Is(err, shared.ErrNotFound) {
			return billing.ErrNoActiveSeries
		}
		if err != nil {
			return err
		}
		orNumber, err := series.IssueNext()
		if err != nil {
			return err
		}
		if err := s.seriesRepo.Save(ctx, series); err != nil {
			return err
		}

		payables, payableMap, err = s.loadSelection(ctx, req)
		if err != nil {
			return err
		}

		tx, err = billing.NewTransaction(orNumber, series.ID, req.AccountID, cashierID)
		if err != nil {
			return err
		}

		// Withholding reduces the taxable payable's due amount before
		// any allocation touches it.
		if req.Withholding != nil {
			if err := s.applyWithholding(tx, payableMap, req); err != nil {
				return err
			}
		}

		for _, tender := range req.Tenders {
			if err := tx.AddLine(billing.TenderType(tender.Type), tender.Amount, tender.Bank, tender.CheckNumber, tender.Reference); err != nil {
				return err
			}
		}

		credit, err = s.applyCredit(ctx, tx, payables, req)
		if err != nil {
			return err
		}

		change, fullPayment, err := allocate(tx, payables)
		if err != nil {
			return err
		}

		// Overpayment is never applied to a payable; it becomes credit
		// usable against future payables.
		if change.IsPositive() {
			if credit == nil {
				credit, err = s.loadOrCreateCredit(ctx, req.AccountID, change)
				if err != nil {
					return err
				}
			} else if err := credit.Add(valueobject.NewMoneyPHP(change)); err != nil {
				return err
			}
		}

		tx.Finalize(change, fullPayment)

		for _, p := range payables {
			if err := s.payableRepo.Save(ctx, p); err != nil {
				return err
			}
		}
		if credit != nil {
			if err := s.creditRepo.Save(ctx, credit); err != nil {
				return err
			}
		}
		return s.txRepo.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.publishAfterCommit(ctx, tx, payables, credit)

	s.logger.Info("payment recorded",
		zap.String("or_number", tx.ORNumber),
		zap.String("account_id", req.AccountID.String()),
		zap.String("total_amount", tx.TotalAmount.String()),
		zap.String("change_amount", tx.ChangeAmount.String()),
		zap.String("payment_mode", string(tx.PaymentMode)),
	)

	resp := ToTransactionResponse(tx, payableMap)
	return &resp, nil
}

// GetTransaction returns one recorded payment by receipt number
func (s *PaymentService) GetTransaction(ctx context.Context, orNumber string) (*TransactionResponse, error) {
	tx, err := s.txRepo.FindByORNumber(ctx, orNumber)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(tx.Allocations))
	for _, a := range tx.Allocations {
		ids = append(ids, a.PayableID)
	}
	payables, err := s.payableRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*billing.Payable, len(payables))
	for i := range payables {
		byID[payables[i].ID] = &payables[i]
	}

	resp := ToTransactionResponse(tx, byID)
	return &resp, nil
}

// GetCreditBalance returns the account's available credit. Accounts that
// never overpaid report zero.
func (s *PaymentService) GetCreditBalance(ctx context.Context, accountID uuid.UUID) (*CreditBalanceResponse, error) {
	cb, err := s.creditRepo.FindByAccount(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		return &CreditBalanceResponse{AccountID: accountID, Amount: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return &CreditBalanceResponse{AccountID: accountID, Amount: cb.Amount}, nil
}

func validatePaymentRequest(req PaymentRequest) error {
	if len(req.PayableIDs) == 0 {
		return shared.NewDomainError("INVALID_SELECTION", "At least one payable must be selected")
	}
	seen := make(map[uuid.UUID]bool, len(req.PayableIDs))
	for _, id := range req.PayableIDs {
		if seen[id] {
			return shared.NewDomainError("INVALID_SELECTION", "Duplicate payable in selection")
		}
		seen[id] = true
	}
	if req.CreditAmount.IsNegative() {
		return billing.ErrInvalidPaymentAmount
	}

	total := req.CreditAmount
	for _, tender := range req.Tenders {
		if !billing.TenderType(tender.Type).IsValid() || billing.TenderType(tender.Type) == billing.TenderTypeCreditBalance {
			return shared.NewDomainError("INVALID_TENDER_TYPE", fmt.Sprintf("Tender type %q is not valid", tender.Type))
		}
		if tender.Amount.LessThanOrEqual(decimal.Zero) {
			return billing.ErrInvalidPaymentAmount
		}
		total = total.Add(tender.Amount)
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return billing.ErrInvalidPaymentAmount
	}
	return nil
}

// loadSelection loads the selected payables and re-imposes the submitted
// ID order on the result
func (s *PaymentService) loadSelection(ctx context.Context, req PaymentRequest) ([]*billing.Payable, map[uuid.UUID]*billing.Payable, error) {
	loaded, err := s.payableRepo.FindByIDs(ctx, req.PayableIDs)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[uuid.UUID]*billing.Payable, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = &loaded[i]
	}

	ordered := make([]*billing.Payable, 0, len(req.PayableIDs))
	for _, id := range req.PayableIDs {
		p, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("payable %s: %w", id, shared.ErrNotFound)
		}
		if p.AccountID != req.AccountID {
			return nil, nil, shared.NewDomainError("WRONG_ACCOUNT", fmt.Sprintf("Payable %s does not belong to account %s", p.PayableNumber, req.AccountID))
		}
		ordered = append(ordered, p)
	}
	return ordered, byID, nil
}

func (s *PaymentService) applyWithholding(tx *billing.Transaction, payableMap map[uuid.UUID]*billing.Payable, req PaymentRequest) error {
	ewt := billing.EWTType(req.Withholding.Type)
	if !ewt.IsValid() {
		return shared.NewDomainError("INVALID_EWT_TYPE", "Withholding tax type is not valid")
	}
	target, ok := payableMap[req.Withholding.PayableID]
	if !ok {
		return shared.NewDomainError("INVALID_EWT_TARGET", "Withholding target must be part of the payment selection")
	}

	amount := ewt.Compute(target.TotalAmountDue)
	if err := target.ApplyWithholding(ewt, valueobject.NewMoneyPHP(amount)); err != nil {
		return err
	}
	tx.SetWithholding(ewt, amount)
	return nil
}

// applyCredit draws down the account's credit reserve. The draw is
// capped at the available reserve, so an over-declared credit amount
// proceeds with what the account holds, and at the selection's remaining
// balance, so credit never turns into change.
func (s *PaymentService) applyCredit(ctx context.Context, tx *billing.Transaction, payables []*billing.Payable, req PaymentRequest) (*billing.CreditBalance, error) {
	if !req.CreditAmount.IsPositive() {
		return nil, nil
	}

	credit, err := s.creditRepo.FindByAccount(ctx, req.AccountID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INSUFFICIENT_CREDIT", "Account has no credit balance")
	}
	if err != nil {
		return nil, err
	}

	totalBalance := decimal.Zero
	for _, p := range payables {
		totalBalance = totalBalance.Add(p.Balance)
	}
	toUse := decimal.Min(req.CreditAmount, credit.Amount, totalBalance)
	if !toUse.IsPositive() {
		return credit, nil
	}

	if err := credit.Use(valueobject.NewMoneyPHP(toUse)); err != nil {
		return nil, err
	}
	if err := tx.AddLine(billing.TenderTypeCreditBalance, toUse, "", "", ""); err != nil {
		return nil, err
	}
	return credit, nil
}

// allocate walks the payables in the submitted order, applying
// min(remaining funds, balance) to each. Settled payables are skipped.
// Returns the unallocated remainder and whether every selected payable
// ended fully settled.
func allocate(tx *billing.Transaction, payables []*billing.Payable) (decimal.Decimal, bool, error) {
	remaining := tx.AmountPaid.Add(tx.CreditApplied)

	for _, p := range payables {
		if !p.HasBalance() {
			continue
		}
		if !remaining.IsPositive() {
			break
		}
		applied := decimal.Min(remaining, p.Balance)
		if err := p.ApplyPayment(valueobject.NewMoneyPHP(applied), tx.ID); err != nil {
			return decimal.Zero, false, err
		}
		tx.AddAllocation(p.ID, applied)
		remaining = remaining.Sub(applied)
	}

	fullPayment := true
	for _, p := range payables {
		if !p.IsPaid() {
			fullPayment = false
			break
		}
	}
	return remaining, fullPayment, nil
}

func (s *PaymentService) loadOrCreateCredit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*billing.CreditBalance, error) {
	credit, err := s.creditRepo.FindByAccount(ctx, accountID)
	if errors.Is(err, shared.ErrNotFound) {
		return billing.NewCreditBalance(accountID, valueobject.NewMoneyPHP(amount))
	}
	if err != nil {
		return nil, err
	}
	if err := credit.Add(valueobject.NewMoneyPHP(amount)); err != nil {
		return nil, err
	}
	return credit, nil
}

// publishAfterCommit forwards every aggregate's events once the owning
// transaction has committed
func (s *PaymentService) publishAfterCommit(ctx context.Context, tx *billing.Transaction, payables []*billing.Payable, credit *billing.CreditBalance) {
	if s.eventPublisher == nil {
		return
	}

	var events []shared.DomainEvent
	for _, p := range payables {
		events = append(events, p.GetDomainEvents()...)
		p.ClearDomainEvents()
	}
	if credit != nil {
		events = append(events, credit.GetDomainEvents()...)
		credit.ClearDomainEvents()
	}
	events = append(events, tx.GetDomainEvents()...)
	tx.ClearDomainEvents()

	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish billing event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
}
