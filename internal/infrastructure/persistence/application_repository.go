package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormApplicationRepository implements crm.ApplicationRepository using GORM
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewGormApplicationRepository creates a new GormApplicationRepository
func NewGormApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// Create persists a new customer application
func (r *GormApplicationRepository) Create(ctx context.Context, app *crm.CustomerApplication) error {
	return dbFromContext(ctx, r.db).Create(app).Error
}

// FindByID finds an application by its ID
func (r *GormApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.CustomerApplication, error) {
	var app crm.CustomerApplication
	if err := dbFromContext(ctx, r.db).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// FindByNumber finds an application by its application number
func (r *GormApplicationRepository) FindByNumber(ctx context.Context, applicationNumber string) (*crm.CustomerApplication, error) {
	var app crm.CustomerApplication
	if err := dbFromContext(ctx, r.db).
		Where("application_number = ?", applicationNumber).
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// FindByAccountID finds the application that provisioned a consumer account
func (r *GormApplicationRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*crm.CustomerApplication, error) {
	var app crm.CustomerApplication
	if err := dbFromContext(ctx, r.db).
		Where("account_id = ?", accountID).
		First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// List returns applications filtered by status with pagination
func (r *GormApplicationRepository) List(ctx context.Context, status *crm.ApplicationStatus, filter shared.Filter) (*shared.Paginated[crm.CustomerApplication], error) {
	db := dbFromContext(ctx, r.db)

	conditions := func(q *gorm.DB) *gorm.DB {
		if status != nil {
			q = q.Where("status = ?", *status)
		}
		if filter.Search != "" {
			searchPattern := "%" + filter.Search + "%"
			q = q.Where("application_number ILIKE ? OR applicant_name ILIKE ? OR address ILIKE ?",
				searchPattern, searchPattern, searchPattern)
		}
		return q
	}

	var total int64
	if err := conditions(db.Model(&crm.CustomerApplication{})).Count(&total).Error; err != nil {
		return nil, err
	}

	query := conditions(db.Model(&crm.CustomerApplication{}))
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

	var apps []crm.CustomerApplication
	if err := query.Find(&apps).Error; err != nil {
		return nil, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	result := shared.NewPaginated(apps, total, page, pageSize)
	return &result, nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormApplicationRepository) SaveWithLock(ctx context.Context, app *crm.CustomerApplication) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&crm.CustomerApplication{}).
			Where("id = ?", app.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != app.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The application has been modified by another user")
		}

		app.Version++
		app.UpdatedAt = time.Now()

		result := tx.Model(&crm.CustomerApplication{}).
			Where("id = ? AND version = ?", app.ID, currentVersion).
			Updates(map[string]interface{}{
				"applicant_name":   app.ApplicantName,
				"address":          app.Address,
				"contact_number":   app.ContactNumber,
				"email":            app.Email,
				"connection_type":  app.ConnectionType,
				"status":           app.Status,
				"rejection_reason": app.RejectionReason,
				"verified_at":      app.VerifiedAt,
				"signed_at":        app.SignedAt,
				"energized_at":     app.EnergizedAt,
				"version":          app.Version,
				"updated_at":       app.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The application has been modified by another user")
		}

		return nil
	})
}

// GenerateApplicationNumber generates a unique application number.
// Format: APP-YYYYMMDD-NNNNN (e.g., APP-20260901-00001)
func (r *GormApplicationRepository) GenerateApplicationNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("APP-%s-", time.Now().Format("20060102"))
	return generateSequentialNumber(dbFromContext(ctx, r.db), &crm.CustomerApplication{}, "application_number", prefix)
}

var _ crm.ApplicationRepository = (*GormApplicationRepository)(nil)
