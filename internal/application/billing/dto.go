package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ucrm/backend/internal/domain/billing"
)

// TenderRequest is one tendered payment instrument
type TenderRequest struct {
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Bank        string          `json:"bank,omitempty"`
	CheckNumber string          `json:"check_number,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// WithholdingRequest opts a payment into EWT deduction. The deduction is
// taken against one payable's amount due before allocation.
type WithholdingRequest struct {
	Type      string    `json:"type" binding:"required"`
	PayableID uuid.UUID `json:"payable_id" binding:"required"`
}

// PaymentRequest settles a set of an account's payables. PayableIDs is
// the allocation priority order and is never reordered.
type PaymentRequest struct {
	AccountID    uuid.UUID           `json:"account_id" binding:"required"`
	PayableIDs   []uuid.UUID         `json:"payable_ids" binding:"required,min=1"`
	Tenders      []TenderRequest     `json:"tenders"`
	CreditAmount decimal.Decimal     `json:"credit_amount"`
	Withholding  *WithholdingRequest `json:"withholding,omitempty"`
}

// CreateSeriesRequest configures a new receipt numbering series
type CreateSeriesRequest struct {
	Name        string    `json:"name" binding:"required"`
	Prefix      string    `json:"prefix,omitempty"`
	Format      string    `json:"format" binding:"required"`
	StartNumber int64     `json:"start_number" binding:"required"`
	EndNumber   int64     `json:"end_number" binding:"required"`
	UserID      uuid.UUID `json:"user_id" binding:"required"`
}

// CreatePayableRequest books a new amount owed by an account
type CreatePayableRequest struct {
	AccountID   uuid.UUID       `json:"account_id" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	Description string          `json:"description,omitempty"`
	AmountDue   decimal.Decimal `json:"amount_due" binding:"required"`
}

// AllocationResponse is one payable's share of a payment
type AllocationResponse struct {
	PayableID     uuid.UUID       `json:"payable_id"`
	PayableNumber string          `json:"payable_number"`
	Applied       decimal.Decimal `json:"applied"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
}

// TransactionResponse is the API representation of a recorded payment
type TransactionResponse struct {
	ID            uuid.UUID            `json:"id"`
	ORNumber      string               `json:"or_number"`
	AccountID     uuid.UUID            `json:"account_id"`
	CashierID     uuid.UUID            `json:"cashier_id"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	CreditApplied decimal.Decimal      `json:"credit_applied"`
	ChangeAmount  decimal.Decimal      `json:"change_amount"`
	NetCollection decimal.Decimal      `json:"net_collection"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	PaymentMode   string               `json:"payment_mode"`
	EWTType       string               `json:"ewt_type,omitempty"`
	EWTAmount     decimal.Decimal      `json:"ewt_amount"`
	Allocations   []AllocationResponse `json:"allocations"`
	PaidAt        time.Time            `json:"paid_at"`
}

// PayableResponse is the API representation of a payable
type PayableResponse struct {
	ID             uuid.UUID       `json:"id"`
	PayableNumber  string          `json:"payable_number"`
	AccountID      uuid.UUID       `json:"account_id"`
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	EWTDeducted    decimal.Decimal `json:"ewt_deducted"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// SeriesResponse is the API representation of a numbering series
type SeriesResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Prefix         string    `json:"prefix,omitempty"`
	Format         string    `json:"format"`
	StartNumber    int64     `json:"start_number"`
	EndNumber      int64     `json:"end_number"`
	CurrentNumber  int64     `json:"current_number"`
	Remaining      int64     `json:"remaining"`
	IsActive       bool      `json:"is_active"`
	AssignedUserID uuid.UUID `json:"assigned_user_id"`
}

// CreditBalanceResponse is the API representation of an account's credit
type CreditBalanceResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ToPayableResponse maps a payable aggregate to its API representation
func ToPayableResponse(p *billing.Payable) PayableResponse {
	return PayableResponse{
		ID:             p.ID,
		PayableNumber:  p.PayableNumber,
		AccountID:      p.AccountID,
		Type:           string(p.Type),
		Description:    p.Description,
		TotalAmountDue: p.TotalAmountDue,
		AmountPaid:     p.AmountPaid,
		Balance:        p.Balance,
		Status:         p.Status.String(),
		EWTDeducted:    p.EWTDeducted,
		PaidAt:         p.PaidAt,
	}
}

// ToSeriesResponse maps a series aggregate to its API representation
func ToSeriesResponse(s *billing.TransactionSeries) SeriesResponse {
	return SeriesResponse{
		ID:             s.ID,
		Name:           s.Name,
		Prefix:         s.Prefix,
		Format:         s.Format,
		StartNumber:    s.StartNumber,
		EndNumber:      s.EndNumber,
		CurrentNumber:  s.CurrentNumber,
		Remaining:      s.Remaining(),
		IsActive:       s.IsActive,
		AssignedUserID: s.AssignedUserID,
	}
}

// ToTransactionResponse maps a transaction and its settled payables to
// the API representation
func ToTransactionResponse(tx *billing.Transaction, payables map[uuid.UUID]*billing.Payable) TransactionResponse {
	allocations := make([]AllocationResponse, 0, len(tx.Allocations))
	for _, a := range tx.Allocations {
		resp := AllocationResponse{
			PayableID: a.PayableID,
			Applied:   a.Amount,
		}
		if p, ok := payables[a.PayableID]; ok {
			resp.PayableNumber = p.PayableNumber
			resp.Balance = p.Balance
			resp.Status = p.Status.String()
		}
		allocations = append(allocations, resp)
	}

	ewtType := ""
	if tx.EWTType != nil {
		ewtType = string(*tx.EWTType)
	}

	return TransactionResponse{
		ID:            tx.ID,
		ORNumber:      tx.ORNumber,
		AccountID:     tx.AccountID,
		CashierID:     tx.CashierID,
		AmountPaid:    tx.AmountPaid,
		CreditApplied: tx.CreditApplied,
		ChangeAmount:  tx.ChangeAmount,
		NetCollection: tx.NetCollection,
		TotalAmount:   tx.TotalAmount,
		PaymentMode:   string(tx.PaymentMode),
		EWTType:       ewtType,
		EWTAmount:     tx.EWTAmount,
		Allocations:   allocations,
		PaidAt:        tx.PaidAt,
	}
}
