package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
)

type seriesFixture struct {
	seriesRepo *MockSeriesRepository
	service    *SeriesService
}

func newSeriesFixture() *seriesFixture {
	f := &seriesFixture{seriesRepo: new(MockSeriesRepository)}
	f.service = NewSeriesService(f.seriesRepo, passthroughTxManager{}, zap.NewNop())
	return f
}

func TestSeriesService_Create(t *testing.T) {
	f := newSeriesFixture()
	userID := uuid.New()

	f.seriesRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.TransactionSeries")).Return(nil)

	resp, err := f.service.Create(context.Background(), CreateSeriesRequest{
		Name:        "Main Window 2026",
		Prefix:      "OR",
		Format:      "{PREFIX}-{NUMBER:7}",
		StartNumber: 1,
		EndNumber:   50000,
		UserID:      userID,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsActive)
	assert.Equal(t, int64(50000), resp.Remaining)
	assert.Equal(t, int64(0), resp.CurrentNumber)
}

func TestSeriesService_Create_InvalidRange(t *testing.T) {
	f := newSeriesFixture()

	_, err := f.service.Create(context.Background(), CreateSeriesRequest{
		Name:        "Broken",
		Format:      "{NUMBER}",
		StartNumber: 100,
		EndNumber:   10,
		UserID:      uuid.New(),
	})
	assert.Error(t, err)
	f.seriesRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSeriesService_Activate_RetiresPreviousSeries(t *testing.T) {
	f := newSeriesFixture()
	userID := uuid.New()
	series, err := billing.NewTransactionSeries("New Book", "OR", "{NUMBER}", 1, 1000, userID)
	require.NoError(t, err)

	f.seriesRepo.On("FindByID", mock.Anything, series.ID).Return(series, nil)
	f.seriesRepo.On("DeactivateAllForUser", mock.Anything, userID).Return(nil)
	f.seriesRepo.On("Save", mock.Anything, series).Return(nil)

	resp, err := f.service.Activate(context.Background(), series.ID)
	require.NoError(t, err)

	assert.True(t, resp.IsActive)
	f.seriesRepo.AssertCalled(t, "DeactivateAllForUser", mock.Anything, userID)
}

func TestSeriesService_Activate_ExhaustedSeriesRejected(t *testing.T) {
	f := newSeriesFixture()
	series, err := billing.NewTransactionSeries("Spent", "OR", "{NUMBER}", 1, 1, uuid.New())
	require.NoError(t, err)
	series.Activate()
	_, err = series.IssueNext()
	require.NoError(t, err)
	series.Deactivate()

	f.seriesRepo.On("FindByID", mock.Anything, series.ID).Return(series, nil)

	_, err = f.service.Activate(context.Background(), series.ID)
	assert.ErrorIs(t, err, billing.ErrSeriesExhausted)
	f.seriesRepo.AssertNotCalled(t, "DeactivateAllForUser", mock.Anything, mock.Anything)
}

func TestSeriesService_GetActive_NoneActive(t *testing.T) {
	f := newSeriesFixture()
	userID := uuid.New()

	f.seriesRepo.On("FindActiveByUser", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetActive(context.Background(), userID)
	assert.ErrorIs(t, err, billing.ErrNoActiveSeries)
}

func TestSeriesService_ListByUser(t *testing.T) {
	f := newSeriesFixture()
	userID := uuid.New()
	s1, err := billing.NewTransactionSeries("Book A", "OR", "{NUMBER}", 1, 100, userID)
	require.NoError(t, err)
	s2, err := billing.NewTransactionSeries("Book B", "OR", "{NUMBER}", 101, 200, userID)
	require.NoError(t, err)
	s2.Activate()

	f.seriesRepo.On("FindByUser", mock.Anything, userID).Return([]billing.TransactionSeries{*s1, *s2}, nil)

	out, err := f.service.ListByUser(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.False(t, out[0].IsActive)
	assert.True(t, out[1].IsActive)
}
