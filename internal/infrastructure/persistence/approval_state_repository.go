package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormStateRepository implements approval.StateRepository using GORM
type GormStateRepository struct {
	db *gorm.DB
}

// NewGormStateRepository creates a new GormStateRepository
func NewGormStateRepository(db *gorm.DB) *GormStateRepository {
	return &GormStateRepository{db: db}
}

// FindByID finds an approval state by its ID
func (r *GormStateRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.State, error) {
	var state approval.State
	if err := dbFromContext(ctx, r.db).First(&state, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

// FindByEntity finds the approval state tracking a specific entity
func (r *GormStateRepository) FindByEntity(ctx context.Context, module approval.Module, entityID uuid.UUID) (*approval.State, error) {
	var state approval.State
	if err := dbFromContext(ctx, r.db).
		Where("module = ? AND entity_id = ?", module, entityID).
		First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

// Save creates or updates an approval state
func (r *GormStateRepository) Save(ctx context.Context, state *approval.State) error {
	return dbFromContext(ctx, r.db).Save(state).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormStateRepository) SaveWithLock(ctx context.Context, state *approval.State) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&approval.State{}).
			Where("id = ?", state.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != state.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The approval state has been modified by another user")
		}

		state.Version++
		state.UpdatedAt = time.Now()

		result := tx.Model(&approval.State{}).
			Where("id = ? AND version = ?", state.ID, currentVersion).
			Updates(map[string]interface{}{
				"flow_id":       state.FlowID,
				"current_order": state.CurrentOrder,
				"total_steps":   state.TotalSteps,
				"status":        state.Status,
				"completed_at":  state.CompletedAt,
				"version":       state.Version,
				"updated_at":    state.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The approval state has been modified by another user")
		}

		return nil
	})
}

var _ approval.StateRepository = (*GormStateRepository)(nil)
