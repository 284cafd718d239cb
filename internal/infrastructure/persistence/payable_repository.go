package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/billing"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormPayableRepository implements billing.PayableRepository using GORM
type GormPayableRepository struct {
	db *gorm.DB
}

// NewGormPayableRepository creates a new GormPayableRepository
func NewGormPayableRepository(db *gorm.DB) *GormPayableRepository {
	return &GormPayableRepository{db: db}
}

// FindByID finds a payable by its ID
func (r *GormPayableRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payable, error) {
	var payable billing.Payable
	if err := dbFromContext(ctx, r.db).First(&payable, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payable, nil
}

// FindByIDs returns the payables matching the given IDs
func (r *GormPayableRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.Payable, error) {
	if len(ids) == 0 {
		return []billing.Payable{}, nil
	}

	var payables []billing.Payable
	if err := dbFromContext(ctx, r.db).
		Where("id IN ?", ids).
		Find(&payables).Error; err != nil {
		return nil, err
	}
	return payables, nil
}

// FindByAccount finds an account's payables with filtering
func (r *GormPayableRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]billing.Payable, error) {
	var payables []billing.Payable
	query := r.applyFilter(
		dbFromContext(ctx, r.db).Model(&billing.Payable{}).Where("account_id = ?", accountID),
		filter,
	)

	if err := query.Find(&payables).Error; err != nil {
		return nil, err
	}
	return payables, nil
}

// FindByAccountAndTypes finds an account's payables matching any of the given types
func (r *GormPayableRepository) FindByAccountAndTypes(ctx context.Context, accountID uuid.UUID, types []billing.PayableType) ([]billing.Payable, error) {
	if len(types) == 0 {
		return []billing.Payable{}, nil
	}

	var payables []billing.Payable
	if err := dbFromContext(ctx, r.db).
		Where("account_id = ? AND type IN ?", accountID, types).
		Order("created_at ASC").
		Find(&payables).Error; err != nil {
		return nil, err
	}
	return payables, nil
}

// Save creates or updates a payable
func (r *GormPayableRepository) Save(ctx context.Context, payable *billing.Payable) error {
	return dbFromContext(ctx, r.db).Save(payable).Error
}

// GeneratePayableNumber generates a unique payable number.
// Format: PB-YYYYMMDD-NNNNN (e.g., PB-20260901-00001)
func (r *GormPayableRepository) GeneratePayableNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PB-%s-", time.Now().Format("20060102"))
	return generateSequentialNumber(dbFromContext(ctx, r.db), &billing.Payable{}, "payable_number", prefix)
}

func (r *GormPayableRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("payable_number ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "types":
			if types, ok := value.([]string); ok && len(types) > 0 {
				query = query.Where("type IN ?", types)
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
		query = query.Order("created_at DESC")
	}

	return query
}

var _ billing.PayableRepository = (*GormPayableRepository)(nil)
