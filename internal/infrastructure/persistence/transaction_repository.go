package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormTransactionRepository implements billing.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create persists a completed payment transaction with its tender lines and
// allocations. Transactions are immutable once written.
func (r *GormTransactionRepository) Create(ctx context.Context, payment *billing.Transaction) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines", "Allocations").Create(payment).Error; err != nil {
			return err
		}

		for i := range payment.Lines {
			payment.Lines[i].TransactionID = payment.ID
			if err := tx.Create(&payment.Lines[i]).Error; err != nil {
				return err
			}
		}

		for i := range payment.Allocations {
			payment.Allocations[i].TransactionID = payment.ID
			if err := tx.Create(&payment.Allocations[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindByID finds a transaction with its tender lines and allocations
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Transaction, error) {
	var payment billing.Transaction
	if err := dbFromContext(ctx, r.db).
		Preload("Lines").
		Preload("Allocations").
		First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByORNumber finds a transaction by its official receipt number
func (r *GormTransactionRepository) FindByORNumber(ctx context.Context, orNumber string) (*billing.Transaction, error) {
	var payment billing.Transaction
	if err := dbFromContext(ctx, r.db).
		Preload("Lines").
		Preload("Allocations").
		Where("or_number = ?", orNumber).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByAccount finds an account's transactions with filtering
func (r *GormTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]billing.Transaction, error) {
	var payments []billing.Transaction
	query := dbFromContext(ctx, r.db).
		Model(&billing.Transaction{}).
		Preload("Lines").
		Preload("Allocations").
		Where("account_id = ?", accountID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("or_number ILIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "cashier_id":
			query = query.Where("cashier_id = ?", value)
		case "payment_mode":
			query = query.Where("payment_mode = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("paid_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("paid_at <= ?", t)
			}
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("paid_at DESC")
	}

	return query
}

var _ billing.TransactionRepository = (*GormTransactionRepository)(nil)
