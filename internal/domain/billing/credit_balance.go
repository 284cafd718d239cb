package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// CreditBalance is a per-account reserve of prior overpayment, usable
// against future payables. The amount never goes negative.
type CreditBalance struct {
	shared.BaseAggregateRoot
	AccountID uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;uniqueIndex"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CreditBalance) TableName() string {
	return "credit_balances"
}

// NewCreditBalance creates a credit balance for an account, seeded with
// the first overpayment.
func NewCreditBalance(accountID uuid.UUID, initial valueobject.Money) (*CreditBalance, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if initial.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit balance cannot start negative")
	}

	cb := &CreditBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountID:         accountID,
		Amount:            initial.Amount(),
	}

	cb.AddDomainEvent(NewCreditBalanceChangedEvent(cb, initial.Amount()))

	return cb, nil
}

// Add credits an overpayment into the reserve
func (cb *CreditBalance) Add(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	cb.Amount = cb.Amount.Add(amount.Amount())
	cb.UpdatedAt = time.Now()
	cb.IncrementVersion()

	cb.AddDomainEvent(NewCreditBalanceChangedEvent(cb, amount.Amount()))

	return nil
}

// Use deducts credit applied to a payment. Fails if the reserve is
// insufficient.
func (cb *CreditBalance) Use(amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if amount.Amount().GreaterThan(cb.Amount) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT", fmt.Sprintf("Credit %s requested but only %s available", amount.Amount(), cb.Amount))
	}

	cb.Amount = cb.Amount.Sub(amount.Amount())
	cb.UpdatedAt = time.Now()
	cb.IncrementVersion()

	cb.AddDomainEvent(NewCreditBalanceChangedEvent(cb, amount.Amount().Neg()))

	return nil
}

// Available returns the usable credit as Money
func (cb *CreditBalance) Available() valueobject.Money {
	return valueobject.NewMoneyPHP(cb.Amount)
}
