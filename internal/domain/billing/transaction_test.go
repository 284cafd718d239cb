package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucrm/backend/internal/domain/shared/valueobject"
)

func newTestTransaction(t *testing.T) *Transaction {
	t.Helper()
	tx, err := NewTransaction("OR-0000001", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return tx
}

func TestNewTransaction_Validation(t *testing.T) {
	_, err := NewTransaction("", uuid.New(), uuid.New(), uuid.New())
	assert.Error(t, err)

	_, err = NewTransaction("OR-1", uuid.New(), uuid.Nil, uuid.New())
	assert.Error(t, err)

	_, err = NewTransaction("OR-1", uuid.New(), uuid.New(), uuid.Nil)
	assert.Error(t, err)
}

func TestTransaction_AddLine_SplitsCashAndCredit(t *testing.T) {
	tx := newTestTransaction(t)

	require.NoError(t, tx.AddLine(TenderTypeCash, decimal.NewFromInt(3000), "", "", ""))
	require.NoError(t, tx.AddLine(TenderTypeCheck, decimal.NewFromInt(2000), "LandBank", "0045121", ""))
	require.NoError(t, tx.AddLine(TenderTypeCreditBalance, decimal.NewFromInt(500), "", "", ""))

	assert.Equal(t, "5000", tx.AmountPaid.String())
	assert.Equal(t, "500", tx.CreditApplied.String())
	assert.Equal(t, "5500", tx.LinesTotal().String())
}

func TestTransaction_AddLine_RejectsInvalidInput(t *testing.T) {
	tx := newTestTransaction(t)

	assert.Error(t, tx.AddLine(TenderType("BARTER"), decimal.NewFromInt(100), "", "", ""))
	assert.Error(t, tx.AddLine(TenderTypeCash, decimal.Zero, "", "", ""))
	assert.Error(t, tx.AddLine(TenderTypeCash, decimal.NewFromInt(-50), "", "", ""))
	assert.Empty(t, tx.Lines)
}

func TestTransaction_Finalize_FullPayment(t *testing.T) {
	tx := newTestTransaction(t)
	require.NoError(t, tx.AddLine(TenderTypeCash, decimal.NewFromInt(6000), "", "", ""))
	tx.AddAllocation(uuid.New(), decimal.NewFromInt(5000))
	tx.AddAllocation(uuid.New(), decimal.NewFromInt(800))
	tx.ClearDomainEvents()

	tx.Finalize(decimal.NewFromInt(200), true)

	assert.Equal(t, PaymentModeFull, tx.PaymentMode)
	assert.Equal(t, "200", tx.ChangeAmount.String())
	assert.Equal(t, "5800", tx.NetCollection.String())
	assert.Equal(t, "6000", tx.TotalAmount.String())
	assert.Equal(t, "5800", tx.AllocatedTotal().String())

	events := tx.GetDomainEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(*TransactionRecordedEvent)
	assert.True(t, ok)
}

func TestTransaction_Finalize_PartialPayment(t *testing.T) {
	tx := newTestTransaction(t)
	require.NoError(t, tx.AddLine(TenderTypeCash, decimal.NewFromInt(1000), "", "", ""))
	require.NoError(t, tx.AddLine(TenderTypeCreditBalance, decimal.NewFromInt(250), "", "", ""))
	tx.AddAllocation(uuid.New(), decimal.NewFromInt(1250))

	tx.Finalize(decimal.Zero, false)

	assert.Equal(t, PaymentModePartial, tx.PaymentMode)
	assert.Equal(t, "1000", tx.NetCollection.String())
	// TotalAmount covers cash plus applied credit
	assert.Equal(t, "1250", tx.TotalAmount.String())
	assert.True(t, tx.LinesTotal().Equal(tx.TotalAmount))
}

func TestTransaction_SetWithholding(t *testing.T) {
	tx := newTestTransaction(t)
	tx.SetWithholding(EWTTypeCommercial, decimal.NewFromInt(500))

	require.NotNil(t, tx.EWTType)
	assert.Equal(t, EWTTypeCommercial, *tx.EWTType)
	assert.Equal(t, "500", tx.EWTAmount.String())
}

func TestCreditBalance_AddAndUse(t *testing.T) {
	cb, err := NewCreditBalance(uuid.New(), valueobject.NewMoneyPHPFromFloat(200))
	require.NoError(t, err)

	require.NoError(t, cb.Add(valueobject.NewMoneyPHPFromFloat(300)))
	assert.Equal(t, "500", cb.Available().Amount().String())

	require.NoError(t, cb.Use(valueobject.NewMoneyPHPFromFloat(450)))
	assert.Equal(t, "50", cb.Available().Amount().String())

	err = cb.Use(valueobject.NewMoneyPHPFromFloat(51))
	require.Error(t, err)
	assert.Equal(t, "50", cb.Available().Amount().String())
}

func TestCreditBalance_UseExactAmount(t *testing.T) {
	cb, err := NewCreditBalance(uuid.New(), valueobject.NewMoneyPHPFromFloat(9800))
	require.NoError(t, err)

	require.NoError(t, cb.Use(valueobject.NewMoneyPHPFromFloat(9800)))
	assert.True(t, cb.Available().IsZero())
}
