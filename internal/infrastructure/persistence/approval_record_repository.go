package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/approval"
)

// GormRecordRepository implements approval.RecordRepository using GORM
type GormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GormRecordRepository
func NewGormRecordRepository(db *gorm.DB) *GormRecordRepository {
	return &GormRecordRepository{db: db}
}

// Create appends a record to the audit trail
func (r *GormRecordRepository) Create(ctx context.Context, record *approval.Record) error {
	return dbFromContext(ctx, r.db).Create(record).Error
}

// FindByEntity returns the entity's audit trail, oldest decision first
func (r *GormRecordRepository) FindByEntity(ctx context.Context, module approval.Module, entityID uuid.UUID) ([]approval.Record, error) {
	var records []approval.Record
	if err := dbFromContext(ctx, r.db).
		Where("module = ? AND entity_id = ?", module, entityID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

var _ approval.RecordRepository = (*GormRecordRepository)(nil)
