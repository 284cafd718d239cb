package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// Event type names for the billing context
const (
	EventTypePayableCreated       = "PayableCreated"
	EventTypePayablePartiallyPaid = "PayablePartiallyPaid"
	EventTypePayablePaid          = "PayablePaid"
	EventTypeTransactionRecorded  = "TransactionRecorded"
	EventTypeCreditBalanceChanged = "CreditBalanceChanged"
)

// PayableCreatedEvent is raised when a new payable is issued to an account
type PayableCreatedEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID       `json:"payable_id"`
	PayableNumber string          `json:"payable_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	PayableType   PayableType     `json:"payable_type"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// EventType returns the event type name
func (e *PayableCreatedEvent) EventType() string {
	return EventTypePayableCreated
}

// NewPayableCreatedEvent creates a new PayableCreatedEvent
func NewPayableCreatedEvent(p *Payable) *PayableCreatedEvent {
	return &PayableCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayableCreated, "Payable", p.ID),
		PayableID:       p.ID,
		PayableNumber:   p.PayableNumber,
		AccountID:       p.AccountID,
		PayableType:     p.Type,
		AmountDue:       p.TotalAmountDue,
	}
}

// PayablePartiallyPaidEvent is raised when an allocation leaves a balance
type PayablePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID       `json:"payable_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	PayableType   PayableType     `json:"payable_type"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	Balance       decimal.Decimal `json:"balance"`
	TransactionID uuid.UUID       `json:"transaction_id"`
}

// EventType returns the event type name
func (e *PayablePartiallyPaidEvent) EventType() string {
	return EventTypePayablePartiallyPaid
}

// NewPayablePartiallyPaidEvent creates a new PayablePartiallyPaidEvent
func NewPayablePartiallyPaidEvent(p *Payable, applied valueobject.Money, transactionID uuid.UUID) *PayablePartiallyPaidEvent {
	return &PayablePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayablePartiallyPaid, "Payable", p.ID),
		PayableID:       p.ID,
		AccountID:       p.AccountID,
		PayableType:     p.Type,
		AmountApplied:   applied.Amount(),
		Balance:         p.Balance,
		TransactionID:   transactionID,
	}
}

// PayablePaidEvent is raised when a payable reaches zero balance.
// The settlement watcher reacts to this to advance the owning
// application once the whole energization group is settled.
type PayablePaidEvent struct {
	shared.BaseDomainEvent
	PayableID     uuid.UUID   `json:"payable_id"`
	AccountID     uuid.UUID   `json:"account_id"`
	PayableType   PayableType `json:"payable_type"`
	TransactionID uuid.UUID   `json:"transaction_id"`
}

// EventType returns the event type name
func (e *PayablePaidEvent) EventType() string {
	return EventTypePayablePaid
}

// NewPayablePaidEvent creates a new PayablePaidEvent
func NewPayablePaidEvent(p *Payable, transactionID uuid.UUID) *PayablePaidEvent {
	return &PayablePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayablePaid, "Payable", p.ID),
		PayableID:       p.ID,
		AccountID:       p.AccountID,
		PayableType:     p.Type,
		TransactionID:   transactionID,
	}
}

// TransactionRecordedEvent is raised when a payment transaction is finalized
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	ORNumber      string          `json:"or_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMode   PaymentMode     `json:"payment_mode"`
}

// EventType returns the event type name
func (e *TransactionRecordedEvent) EventType() string {
	return EventTypeTransactionRecorded
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent
func NewTransactionRecordedEvent(t *Transaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, "Transaction", t.ID),
		TransactionID:   t.ID,
		ORNumber:        t.ORNumber,
		AccountID:       t.AccountID,
		TotalAmount:     t.TotalAmount,
		PaymentMode:     t.PaymentMode,
	}
}

// CreditBalanceChangedEvent is raised whenever a credit reserve moves
type CreditBalanceChangedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID       `json:"account_id"`
	Delta     decimal.Decimal `json:"delta"`
	Amount    decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *CreditBalanceChangedEvent) EventType() string {
	return EventTypeCreditBalanceChanged
}

// NewCreditBalanceChangedEvent creates a new CreditBalanceChangedEvent
func NewCreditBalanceChangedEvent(cb *CreditBalance, delta decimal.Decimal) *CreditBalanceChangedEvent {
	return &CreditBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditBalanceChanged, "CreditBalance", cb.ID),
		AccountID:       cb.AccountID,
		Delta:           delta,
		Amount:          cb.Amount,
	}
}
