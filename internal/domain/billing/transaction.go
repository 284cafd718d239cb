package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ucrm/backend/internal/domain/shared"
)

// PaymentMode distinguishes a payment that settles every selected
// payable from one that leaves a balance behind.
type PaymentMode string

const (
	PaymentModeFull    PaymentMode = "Full Payment"
	PaymentModePartial PaymentMode = "Partial Payment"
)

// TenderType is the kind of one payment line within a transaction
type TenderType string

const (
	TenderTypeCash          TenderType = "CASH"
	TenderTypeCard          TenderType = "CARD"
	TenderTypeCheck         TenderType = "CHECK"
	TenderTypeCreditBalance TenderType = "CREDIT_BALANCE"
)

// IsValid checks if the tender type is valid
func (t TenderType) IsValid() bool {
	switch t {
	case TenderTypeCash, TenderTypeCard, TenderTypeCheck, TenderTypeCreditBalance:
		return true
	}
	return false
}

// PaymentLine is one tender line within a transaction. Immutable once
// the transaction is recorded.
type PaymentLine struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `json:"transaction_id" gorm:"type:uuid;not null;index"`
	Type          TenderType      `json:"type" gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Bank          string          `json:"bank,omitempty" gorm:"type:varchar(100)"`
	CheckNumber   string          `json:"check_number,omitempty" gorm:"type:varchar(50)"`
	Reference     string          `json:"reference,omitempty" gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentLine) TableName() string {
	return "transaction_payment_lines"
}

// Allocation records how much of a transaction was applied to one payable
type Allocation struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `json:"transaction_id" gorm:"type:uuid;not null;index"`
	PayableID     uuid.UUID       `json:"payable_id" gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "transaction_allocations"
}

// Transaction is one completed payment event: the receipt number, the
// tendered lines, and the per-payable allocation. Created atomically with
// its payable mutations.
type Transaction struct {
	shared.BaseAggregateRoot
	ORNumber      string          `json:"or_number" gorm:"type:varchar(50);not null;uniqueIndex"`
	SeriesID      uuid.UUID       `json:"series_id" gorm:"type:uuid;not null"`
	AccountID     uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;index"`
	CashierID     uuid.UUID       `json:"cashier_id" gorm:"type:uuid;not null;index"`
	AmountPaid    decimal.Decimal `json:"amount_paid" gorm:"type:decimal(18,2);not null"`    // sum of non-credit tenders
	CreditApplied decimal.Decimal `json:"credit_applied" gorm:"type:decimal(18,2);not null"` // credit balance drawn down
	ChangeAmount  decimal.Decimal `json:"change_amount" gorm:"type:decimal(18,2);not null"`  // overpayment, credited back
	NetCollection decimal.Decimal `json:"net_collection" gorm:"type:decimal(18,2);not null"` // AmountPaid - ChangeAmount
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(18,2);not null"`   // AmountPaid + CreditApplied
	PaymentMode   PaymentMode     `json:"payment_mode" gorm:"type:varchar(20)"`
	EWTType       *EWTType        `json:"ewt_type,omitempty" gorm:"type:varchar(20)"`
	EWTAmount     decimal.Decimal `json:"ewt_amount" gorm:"type:decimal(18,2);not null"`
	Lines         []PaymentLine   `json:"lines" gorm:"foreignKey:TransactionID"`
	Allocations   []Allocation    `json:"allocations" gorm:"foreignKey:TransactionID"`
	PaidAt        time.Time       `json:"paid_at" gorm:"not null"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "payment_transactions"
}

// NewTransaction creates a payment transaction shell; tender lines and
// allocations are attached before it is persisted.
func NewTransaction(orNumber string, seriesID, accountID, cashierID uuid.UUID) (*Transaction, error) {
	if orNumber == "" {
		return nil, shared.NewDomainError("INVALID_OR_NUMBER", "OR number cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASHIER", "Cashier ID cannot be empty")
	}

	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ORNumber:          orNumber,
		SeriesID:          seriesID,
		AccountID:         accountID,
		CashierID:         cashierID,
		AmountPaid:        decimal.Zero,
		CreditApplied:     decimal.Zero,
		ChangeAmount:      decimal.Zero,
		NetCollection:     decimal.Zero,
		TotalAmount:       decimal.Zero,
		EWTAmount:         decimal.Zero,
		Lines:             make([]PaymentLine, 0),
		Allocations:       make([]Allocation, 0),
		PaidAt:            time.Now(),
	}, nil
}

// AddLine attaches one tender line to the transaction
func (t *Transaction) AddLine(tender TenderType, amount decimal.Decimal, bank, checkNumber, reference string) error {
	if !tender.IsValid() {
		return shared.NewDomainError("INVALID_TENDER_TYPE", "Tender type is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Tender amount must be positive")
	}

	t.Lines = append(t.Lines, PaymentLine{
		ID:            uuid.New(),
		TransactionID: t.ID,
		Type:          tender,
		Amount:        amount,
		Bank:          bank,
		CheckNumber:   checkNumber,
		Reference:     reference,
	})

	if tender == TenderTypeCreditBalance {
		t.CreditApplied = t.CreditApplied.Add(amount)
	} else {
		t.AmountPaid = t.AmountPaid.Add(amount)
	}
	return nil
}

// AddAllocation records how much of the funds went to one payable
func (t *Transaction) AddAllocation(payableID uuid.UUID, amount decimal.Decimal) {
	t.Allocations = append(t.Allocations, Allocation{
		ID:            uuid.New(),
		TransactionID: t.ID,
		PayableID:     payableID,
		Amount:        amount,
	})
}

// AllocatedTotal returns the sum applied across all payables
func (t *Transaction) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range t.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// SetWithholding records the EWT deduction taken before allocation
func (t *Transaction) SetWithholding(ewt EWTType, amount decimal.Decimal) {
	t.EWTType = &ewt
	t.EWTAmount = amount
}

// Finalize computes the derived totals and payment mode, then emits the
// recorded event. Called once, after allocation finishes.
// fullPayment reports whether every selected payable ended with zero balance.
func (t *Transaction) Finalize(changeAmount decimal.Decimal, fullPayment bool) {
	t.ChangeAmount = changeAmount
	t.NetCollection = t.AmountPaid.Sub(changeAmount)
	t.TotalAmount = t.AmountPaid.Add(t.CreditApplied)
	if fullPayment {
		t.PaymentMode = PaymentModeFull
	} else {
		t.PaymentMode = PaymentModePartial
	}

	t.AddDomainEvent(NewTransactionRecordedEvent(t))
}

// LinesTotal returns the sum of every tender line, credit included.
// Invariant: equals TotalAmount after Finalize.
func (t *Transaction) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		total = total.Add(l.Amount)
	}
	return total
}
