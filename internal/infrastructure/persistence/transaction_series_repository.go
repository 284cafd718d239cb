package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormTransactionSeriesRepository implements billing.TransactionSeriesRepository using GORM
type GormTransactionSeriesRepository struct {
	db *gorm.DB
}

// NewGormTransactionSeriesRepository creates a new GormTransactionSeriesRepository
func NewGormTransactionSeriesRepository(db *gorm.DB) *GormTransactionSeriesRepository {
	return &GormTransactionSeriesRepository{db: db}
}

// FindByID finds a series by its ID
func (r *GormTransactionSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.TransactionSeries, error) {
	var series billing.TransactionSeries
	if err := dbFromContext(ctx, r.db).First(&series, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &series, nil
}

// FindByUser finds every series assigned to a user
func (r *GormTransactionSeriesRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]billing.TransactionSeries, error) {
	var series []billing.TransactionSeries
	if err := dbFromContext(ctx, r.db).
		Where("assigned_user_id = ?", userID).
		Order("created_at DESC").
		Find(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// FindActiveByUser finds the user's active series without locking
func (r *GormTransactionSeriesRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*billing.TransactionSeries, error) {
	var series billing.TransactionSeries
	if err := dbFromContext(ctx, r.db).
		Where("assigned_user_id = ? AND is_active = ?", userID, true).
		First(&series).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &series, nil
}

// FindActiveByUserForUpdate loads the user's active series under a row-level
// lock. Concurrent cashiers issuing from the same series queue behind the
// lock, so each receipt number is handed out exactly once.
func (r *GormTransactionSeriesRepository) FindActiveByUserForUpdate(ctx context.Context, userID uuid.UUID) (*billing.TransactionSeries, error) {
	var series billing.TransactionSeries
	if err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assigned_user_id = ? AND is_active = ?", userID, true).
		First(&series).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &series, nil
}

// Save creates or updates a series
func (r *GormTransactionSeriesRepository) Save(ctx context.Context, series *billing.TransactionSeries) error {
	return dbFromContext(ctx, r.db).Save(series).Error
}

// DeactivateAllForUser clears the active flag on every series the user holds
func (r *GormTransactionSeriesRepository) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) error {
	return dbFromContext(ctx, r.db).
		Model(&billing.TransactionSeries{}).
		Where("assigned_user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

var _ billing.TransactionSeriesRepository = (*GormTransactionSeriesRepository)(nil)
