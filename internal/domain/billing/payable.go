package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ucrm/backend/internal/domain/shared"
	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

// PayableStatus represents the settlement status of a payable
type PayableStatus string

const (
	PayableStatusUnpaid        PayableStatus = "UNPAID"
	PayableStatusPartiallyPaid PayableStatus = "PARTIALLY_PAID"
	PayableStatusPaid          PayableStatus = "PAID"
)

// IsValid checks if the status is a valid PayableStatus
func (s PayableStatus) IsValid() bool {
	switch s {
	case PayableStatusUnpaid, PayableStatusPartiallyPaid, PayableStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PayableStatus
func (s PayableStatus) String() string {
	return string(s)
}

// PayableType classifies what the amount is owed for
type PayableType string

const (
	PayableTypeBillDeposit   PayableType = "BILL_DEPOSIT"
	PayableTypeMaterialCost  PayableType = "MATERIAL_COST"
	PayableTypeLaborCost     PayableType = "LABOR_COST"
	PayableTypeInspectionFee PayableType = "INSPECTION_FEE"
	PayableTypeOther         PayableType = "OTHER"
)

// IsValid checks if the payable type is valid
func (t PayableType) IsValid() bool {
	switch t {
	case PayableTypeBillDeposit, PayableTypeMaterialCost, PayableTypeLaborCost,
		PayableTypeInspectionFee, PayableTypeOther:
		return true
	}
	return false
}

// EnergizationGroup is the fixed set of payables that must all be settled
// before an application advances to signing.
var EnergizationGroup = []PayableType{
	PayableTypeBillDeposit,
	PayableTypeMaterialCost,
	PayableTypeLaborCost,
}

// InEnergizationGroup returns true if the type belongs to the energization group
func (t PayableType) InEnergizationGroup() bool {
	for _, g := range EnergizationGroup {
		if t == g {
			return true
		}
	}
	return false
}

// Payable is one amount owed by an account, independently trackable from
// unpaid through paid. Invariant: Balance = TotalAmountDue - AmountPaid,
// with Status derived from Balance.
type Payable struct {
	shared.BaseAggregateRoot
	PayableNumber  string          `json:"payable_number" gorm:"type:varchar(50);not null;uniqueIndex"`
	AccountID      uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;index"`
	Type           PayableType     `json:"type" gorm:"type:varchar(30);not null"`
	Description    string          `json:"description" gorm:"type:varchar(500)"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due" gorm:"type:decimal(18,2);not null"`
	AmountPaid     decimal.Decimal `json:"amount_paid" gorm:"type:decimal(18,2);not null"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(18,2);not null"`
	Status         PayableStatus   `json:"status" gorm:"type:varchar(20);not null"`
	EWTDeducted    decimal.Decimal `json:"ewt_deducted" gorm:"type:decimal(18,2);not null"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// TableName returns the table name for GORM
func (Payable) TableName() string {
	return "payables"
}

// NewPayable creates a new unpaid payable for an account
func NewPayable(payableNumber string, accountID uuid.UUID, payableType PayableType, description string, amountDue valueobject.Money) (*Payable, error) {
	if payableNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYABLE_NUMBER", "Payable number cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !payableType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYABLE_TYPE", "Payable type is not valid")
	}
	if amountDue.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount due must be positive")
	}

	p := &Payable{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PayableNumber:     payableNumber,
		AccountID:         accountID,
		Type:              payableType,
		Description:       description,
		TotalAmountDue:    amountDue.Amount(),
		AmountPaid:        decimal.Zero,
		Balance:           amountDue.Amount(),
		Status:            PayableStatusUnpaid,
		EWTDeducted:       decimal.Zero,
	}

	p.AddDomainEvent(NewPayableCreatedEvent(p))

	return p, nil
}

// ApplyPayment applies an allocation from a transaction to the payable.
// The amount must not exceed the remaining balance; allocation never
// over-applies (overpayment is credited, not applied).
func (p *Payable) ApplyPayment(amount valueobject.Money, transactionID uuid.UUID) error {
	if p.Status == PayableStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply payment to a settled payable")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(p.Balance) {
		return shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf("Payment amount %s exceeds balance %s", amount.Amount(), p.Balance))
	}
	if transactionID == uuid.Nil {
		return shared.NewDomainError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}

	p.AmountPaid = p.AmountPaid.Add(amount.Amount())
	p.Balance = p.TotalAmountDue.Sub(p.AmountPaid)

	if p.Balance.IsZero() {
		now := time.Now()
		p.Status = PayableStatusPaid
		p.PaidAt = &now
		p.AddDomainEvent(NewPayablePaidEvent(p, transactionID))
	} else {
		p.Status = PayableStatusPartiallyPaid
		p.AddDomainEvent(NewPayablePartiallyPaidEvent(p, amount, transactionID))
	}

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ApplyWithholding reduces the amount due by a withholding-tax deduction
// before allocation. Applied at most once, and only while nothing has
// been paid against the payable.
func (p *Payable) ApplyWithholding(ewt EWTType, amount valueobject.Money) error {
	if !ewt.IsValid() {
		return shared.NewDomainError("INVALID_EWT_TYPE", "Withholding tax type is not valid")
	}
	if !p.AmountPaid.IsZero() {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply withholding to a payable with existing payments")
	}
	if !p.EWTDeducted.IsZero() {
		return shared.NewDomainError("INVALID_STATE", "Withholding already applied to this payable")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) || amount.Amount().GreaterThanOrEqual(p.TotalAmountDue) {
		return shared.NewDomainError("INVALID_AMOUNT", "Withholding amount must be positive and below the amount due")
	}

	p.TotalAmountDue = p.TotalAmountDue.Sub(amount.Amount())
	p.Balance = p.TotalAmountDue.Sub(p.AmountPaid)
	p.EWTDeducted = amount.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// HasBalance returns true while the payable is not fully settled
func (p *Payable) HasBalance() bool {
	return p.Balance.GreaterThan(decimal.Zero)
}

// IsPaid returns true once the payable is fully settled
func (p *Payable) IsPaid() bool {
	return p.Status == PayableStatusPaid
}

// GetBalanceMoney returns the remaining balance as Money
func (p *Payable) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(p.Balance)
}
