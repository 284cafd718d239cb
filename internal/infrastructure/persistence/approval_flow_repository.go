package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ucrm/backend/internal/domain/approval"
	"github.com/ucrm/backend/internal/domain/shared"
)

// GormFlowRepository implements approval.FlowRepository using GORM
type GormFlowRepository struct {
	db *gorm.DB
}

// NewGormFlowRepository creates a new GormFlowRepository
func NewGormFlowRepository(db *gorm.DB) *GormFlowRepository {
	return &GormFlowRepository{db: db}
}

// FindByID finds a flow with its steps ordered by step position
func (r *GormFlowRepository) FindByID(ctx context.Context, id uuid.UUID) (*approval.Flow, error) {
	var flow approval.Flow
	if err := dbFromContext(ctx, r.db).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		First(&flow, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &flow, nil
}

// FindByModule returns the flow governing a module. A flow scoped to the
// given department wins over the module-wide flow with an empty department.
func (r *GormFlowRepository) FindByModule(ctx context.Context, module approval.Module, department string) (*approval.Flow, error) {
	var flow approval.Flow
	err := dbFromContext(ctx, r.db).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("module = ? AND department IN ?", module, []string{department, ""}).
		Order("department DESC").
		First(&flow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &flow, nil
}

// FindAll returns every configured flow with its steps
func (r *GormFlowRepository) FindAll(ctx context.Context) ([]approval.Flow, error) {
	var flows []approval.Flow
	if err := dbFromContext(ctx, r.db).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Order("module ASC, department ASC").
		Find(&flows).Error; err != nil {
		return nil, err
	}
	return flows, nil
}

// Save creates or updates a flow together with its steps
func (r *GormFlowRepository) Save(ctx context.Context, flow *approval.Flow) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Steps").Save(flow).Error; err != nil {
			return err
		}

		currentStepIDs := make([]uuid.UUID, len(flow.Steps))
		for i, step := range flow.Steps {
			currentStepIDs[i] = step.ID
		}

		// Delete steps dropped from the flow definition
		if len(currentStepIDs) > 0 {
			if err := tx.Where("flow_id = ? AND id NOT IN ?", flow.ID, currentStepIDs).
				Delete(&approval.FlowStep{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("flow_id = ?", flow.ID).
				Delete(&approval.FlowStep{}).Error; err != nil {
				return err
			}
		}

		for i := range flow.Steps {
			flow.Steps[i].FlowID = flow.ID
			if err := tx.Save(&flow.Steps[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a flow and its steps
func (r *GormFlowRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flow_id = ?", id).Delete(&approval.FlowStep{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&approval.Flow{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ approval.FlowRepository = (*GormFlowRepository)(nil)
