package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/crm"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormInspectionRepository implements crm.InspectionRepository using GORM
type GormInspectionRepository struct {
	db *gorm.DB
}

// NewGormInspectionRepository creates a new GormInspectionRepository
func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

// Create persists a new inspection
func (r *GormInspectionRepository) Create(ctx context.Context, insp *crm.Inspection) error {
	return dbFromContext(ctx, r.db).Create(insp).Error
}

// FindByID finds an inspection by its ID
func (r *GormInspectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Inspection, error) {
	var insp crm.Inspection
	if err := dbFromContext(ctx, r.db).First(&insp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &insp, nil
}

// FindByApplicationID returns an application's inspections, newest first
func (r *GormInspectionRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*crm.Inspection, error) {
	var inspections []*crm.Inspection
	if err := dbFromContext(ctx, r.db).
		Where("application_id = ?", applicationID).
		Order("scheduled_at DESC").
		Find(&inspections).Error; err != nil {
		return nil, err
	}
	return inspections, nil
}

// Save creates or updates an inspection
func (r *GormInspectionRepository) Save(ctx context.Context, insp *crm.Inspection) error {
	return dbFromContext(ctx, r.db).Save(insp).Error
}

var _ crm.InspectionRepository = (*GormInspectionRepository)(nil)
