package billing

import "github.com/shopspring/decimal"

// EWTType classifies the withholding-tax regime applied to a payable
type EWTType string

const (
	EWTTypeGovernment EWTType = "GOVERNMENT" // 2.5%
	EWTTypeCommercial EWTType = "COMMERCIAL" // 5%
)

// IsValid checks if the EWT type is valid
func (t EWTType) IsValid() bool {
	return t == EWTTypeGovernment || t == EWTTypeCommercial
}

// String returns the string representation of EWTType
func (t EWTType) String() string {
	return string(t)
}

// Rate returns the deduction rate for the EWT type
func (t EWTType) Rate() decimal.Decimal {
	switch t {
	case EWTTypeGovernment:
		return decimal.NewFromFloat(0.025)
	case EWTTypeCommercial:
		return decimal.NewFromFloat(0.05)
	}
	return decimal.Zero
}

// Compute returns the withholding amount for a given due amount,
// rounded to centavos.
func (t EWTType) Compute(amountDue decimal.Decimal) decimal.Decimal {
	return amountDue.Mul(t.Rate()).Round(2)
}
