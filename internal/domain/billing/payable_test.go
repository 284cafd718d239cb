package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

func newTestPayable(t *testing.T, payableType PayableType, due float64) *Payable {
	t.Helper()
	p, err := NewPayable("PB-20260901-00001", uuid.New(), payableType, "", valueobject.NewMoneyPHPFromFloat(due))
	require.NoError(t, err)
	return p
}

func TestPayableStatus_IsValid(t *testing.T) {
	tests := []struct {
		status   PayableStatus
		expected bool
	}{
		{PayableStatusUnpaid, true},
		{PayableStatusPartiallyPaid, true},
		{PayableStatusPaid, true},
		{PayableStatus("VOID"), false},
		{PayableStatus(""), false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.IsValid())
		})
	}
}

func TestPayableType_InEnergizationGroup(t *testing.T) {
	assert.True(t, PayableTypeBillDeposit.InEnergizationGroup())
	assert.True(t, PayableTypeMaterialCost.InEnergizationGroup())
	assert.True(t, PayableTypeLaborCost.InEnergizationGroup())
	assert.False(t, PayableTypeInspectionFee.InEnergizationGroup())
	assert.False(t, PayableTypeOther.InEnergizationGroup())
}

func TestNewPayable_Validation(t *testing.T) {
	accountID := uuid.New()

	_, err := NewPayable("", accountID, PayableTypeBillDeposit, "", valueobject.NewMoneyPHPFromFloat(100))
	assert.Error(t, err)

	_, err = NewPayable("PB-1", uuid.Nil, PayableTypeBillDeposit, "", valueobject.NewMoneyPHPFromFloat(100))
	assert.Error(t, err)

	_, err = NewPayable("PB-1", accountID, PayableType("RENT"), "", valueobject.NewMoneyPHPFromFloat(100))
	assert.Error(t, err)

	_, err = NewPayable("PB-1", accountID, PayableTypeBillDeposit, "", valueobject.ZeroPHP())
	assert.Error(t, err)
}

func TestPayable_ApplyPayment_Partial(t *testing.T) {
	p := newTestPayable(t, PayableTypeBillDeposit, 5000)

	err := p.ApplyPayment(valueobject.NewMoneyPHPFromFloat(1000), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, PayableStatusPartiallyPaid, p.Status)
	assert.Equal(t, "1000", p.AmountPaid.String())
	assert.Equal(t, "4000", p.Balance.String())
	// Invariant: amount_paid + balance == total_amount_due
	assert.True(t, p.AmountPaid.Add(p.Balance).Equal(p.TotalAmountDue))
}

func TestPayable_ApplyPayment_FullSettlesAndEmitsPaid(t *testing.T) {
	p := newTestPayable(t, PayableTypeLaborCost, 1500)
	p.ClearDomainEvents()
	txID := uuid.New()

	err := p.ApplyPayment(valueobject.NewMoneyPHPFromFloat(1500), txID)
	require.NoError(t, err)

	assert.Equal(t, PayableStatusPaid, p.Status)
	assert.True(t, p.Balance.IsZero())
	assert.NotNil(t, p.PaidAt)

	events := p.GetDomainEvents()
	require.Len(t, events, 1)
	paid, ok := events[0].(*PayablePaidEvent)
	require.True(t, ok)
	assert.Equal(t, PayableTypeLaborCost, paid.PayableType)
	assert.Equal(t, txID, paid.TransactionID)
}

func TestPayable_ApplyPayment_NeverExceedsBalance(t *testing.T) {
	p := newTestPayable(t, PayableTypeMaterialCost, 500)

	err := p.ApplyPayment(valueobject.NewMoneyPHPFromFloat(600), uuid.New())
	assert.Error(t, err)
	assert.Equal(t, PayableStatusUnpaid, p.Status)
	assert.True(t, p.AmountPaid.IsZero())
}

func TestPayable_ApplyPayment_SettledPayableRejectsFurtherPayments(t *testing.T) {
	p := newTestPayable(t, PayableTypeOther, 200)
	require.NoError(t, p.ApplyPayment(valueobject.NewMoneyPHPFromFloat(200), uuid.New()))

	err := p.ApplyPayment(valueobject.NewMoneyPHPFromFloat(1), uuid.New())
	assert.Error(t, err)
	assert.Equal(t, "200", p.AmountPaid.String())
}

func TestPayable_ApplyWithholding_ReducesDueBeforeAllocation(t *testing.T) {
	p := newTestPayable(t, PayableTypeBillDeposit, 10000)

	// Government EWT: 2.5% of 10000 = 250
	amount := EWTTypeGovernment.Compute(p.TotalAmountDue)
	require.Equal(t, "250", amount.String())

	err := p.ApplyWithholding(EWTTypeGovernment, valueobject.NewMoneyPHP(amount))
	require.NoError(t, err)

	assert.Equal(t, "9750", p.TotalAmountDue.String())
	assert.Equal(t, "9750", p.Balance.String())
	assert.Equal(t, "250", p.EWTDeducted.String())
}

func TestPayable_ApplyWithholding_OnlyOnceAndOnlyBeforePayments(t *testing.T) {
	p := newTestPayable(t, PayableTypeBillDeposit, 10000)
	amount := valueobject.NewMoneyPHP(decimal.NewFromInt(250))

	require.NoError(t, p.ApplyWithholding(EWTTypeGovernment, amount))
	assert.Error(t, p.ApplyWithholding(EWTTypeGovernment, amount))

	paid := newTestPayable(t, PayableTypeBillDeposit, 10000)
	require.NoError(t, paid.ApplyPayment(valueobject.NewMoneyPHPFromFloat(100), uuid.New()))
	assert.Error(t, paid.ApplyWithholding(EWTTypeCommercial, amount))
}

func TestEWTType_Rates(t *testing.T) {
	assert.Equal(t, "0.025", EWTTypeGovernment.Rate().String())
	assert.Equal(t, "0.05", EWTTypeCommercial.Rate().String())
	assert.Equal(t, "500", EWTTypeCommercial.Compute(decimal.NewFromInt(10000)).String())
	assert.False(t, EWTType("VAT").IsValid())
}
