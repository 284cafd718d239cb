package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormCreditBalanceRepository implements billing.CreditBalanceRepository using GORM
type GormCreditBalanceRepository struct {
	db *gorm.DB
}

// NewGormCreditBalanceRepository creates a new GormCreditBalanceRepository
func NewGormCreditBalanceRepository(db *gorm.DB) *GormCreditBalanceRepository {
	return &GormCreditBalanceRepository{db: db}
}

// FindByAccount finds an account's credit balance
func (r *GormCreditBalanceRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*billing.CreditBalance, error) {
	var cb billing.CreditBalance
	if err := dbFromContext(ctx, r.db).
		Where("account_id = ?", accountID).
		First(&cb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cb, nil
}

// Save creates or updates a credit balance
func (r *GormCreditBalanceRepository) Save(ctx context.Context, cb *billing.CreditBalance) error {
	return dbFromContext(ctx, r.db).Save(cb).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCreditBalanceRepository) SaveWithLock(ctx context.Context, cb *billing.CreditBalance) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&billing.CreditBalance{}).
			Where("id = ?", cb.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != cb.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The credit balance has been modified by another user")
		}

		cb.Version++
		cb.UpdatedAt = time.Now()

		result := tx.Model(&billing.CreditBalance{}).
			Where("id = ? AND version = ?", cb.ID, currentVersion).
			Updates(map[string]interface{}{
				"amount":     cb.Amount,
				"version":    cb.Version,
				"updated_at": cb.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The credit balance has been modified by another user")
		}

		return nil
	})
}

var _ billing.CreditBalanceRepository = (*GormCreditBalanceRepository)(nil)
