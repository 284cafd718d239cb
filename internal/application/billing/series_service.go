package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
)

// SeriesService administers receipt numbering series. Each cashier has
// at most one active series; activation and the deactivation of the
// previous series share one database transaction.
type SeriesService struct {
	seriesRepo billing.TransactionSeriesRepository
	txManager  shared.TransactionManager
	logger     *zap.Logger
}

// NewSeriesService creates a new SeriesService
func NewSeriesService(seriesRepo billing.TransactionSeriesRepository, txManager shared.TransactionManager, logger *zap.Logger) *SeriesService {
	return &SeriesService{
		seriesRepo: seriesRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// Create configures a new series for a user. The series starts inactive.
func (s *SeriesService) Create(ctx context.Context, req CreateSeriesRequest) (*SeriesResponse, error) {
	series, err := billing.NewTransactionSeries(req.Name, req.Prefix, req.Format, req.StartNumber, req.EndNumber, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.seriesRepo.Save(ctx, series); err != nil {
		return nil, err
	}

	s.logger.Info("transaction series created",
		zap.String("series_id", series.ID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.Int64("capacity", series.Remaining()),
	)

	resp := ToSeriesResponse(series)
	return &resp, nil
}

// Activate makes a series the user's issuing series, retiring whichever
// was active before. Numbers already issued are unaffected.
func (s *SeriesService) Activate(ctx context.Context, seriesID uuid.UUID) (*SeriesResponse, error) {
	var series *billing.TransactionSeries
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		series, err = s.seriesRepo.FindByID(ctx, seriesID)
		if err != nil {
			return err
		}
		if series.IsExhausted() {
			return billing.ErrSeriesExhausted
		}

		if err := s.seriesRepo.DeactivateAllForUser(ctx, series.AssignedUserID); err != nil {
			return err
		}

		series.Activate()
		return s.seriesRepo.Save(ctx, series)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction series activated",
		zap.String("series_id", series.ID.String()),
		zap.String("user_id", series.AssignedUserID.String()),
	)

	resp := ToSeriesResponse(series)
	return &resp, nil
}

// Deactivate retires a series without activating a replacement
func (s *SeriesService) Deactivate(ctx context.Context, seriesID uuid.UUID) (*SeriesResponse, error) {
	series, err := s.seriesRepo.FindByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	series.Deactivate()
	if err := s.seriesRepo.Save(ctx, series); err != nil {
		return nil, err
	}

	resp := ToSeriesResponse(series)
	return &resp, nil
}

// ListByUser returns every series assigned to a user
func (s *SeriesService) ListByUser(ctx context.Context, userID uuid.UUID) ([]SeriesResponse, error) {
	series, err := s.seriesRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]SeriesResponse, 0, len(series))
	for i := range series {
		out = append(out, ToSeriesResponse(&series[i]))
	}
	return out, nil
}

// GetActive returns the user's active series, or nil when none is active
func (s *SeriesService) GetActive(ctx context.Context, userID uuid.UUID) (*SeriesResponse, error) {
	series, err := s.seriesRepo.FindActiveByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, billing.ErrNoActiveSeries
	}
	if err != nil {
		return nil, err
	}

	resp := ToSeriesResponse(series)
	return &resp, nil
}
