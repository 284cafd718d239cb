package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/approval"
)

// StepRequest describes one step when creating or replacing flow steps.
// Exactly one of RoleID and UserID must be set.
type StepRequest struct {
	RoleID *uuid.UUID `json:"role_id,omitempty"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Label  string     `json:"label,omitempty"`
}

// CreateFlowRequest describes a new approval flow
type CreateFlowRequest struct {
	Name       string        `json:"name" binding:"required"`
	Module     string        `json:"module" binding:"required"`
	Department string        `json:"department,omitempty"`
	Steps      []StepRequest `json:"steps" binding:"required,min=1"`
}

// ReplaceStepsRequest swaps a flow's steps wholesale
type ReplaceStepsRequest struct {
	Steps []StepRequest `json:"steps" binding:"required,min=1"`
}

// DecisionRequest carries an approve or reject action
type DecisionRequest struct {
	Remarks string `json:"remarks,omitempty"`
}

// StepResponse is one step of a flow
type StepResponse struct {
	ID     uuid.UUID  `json:"id"`
	Order  int        `json:"order"`
	RoleID *uuid.UUID `json:"role_id,omitempty"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Label  string     `json:"label,omitempty"`
}

// FlowResponse is the API representation of an approval flow
type FlowResponse struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Module     string         `json:"module"`
	Department string         `json:"department,omitempty"`
	Steps      []StepResponse `json:"steps"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// StateResponse is the API representation of an entity's approval progress
type StateResponse struct {
	ID           uuid.UUID  `json:"id"`
	Module       string     `json:"module"`
	EntityID     uuid.UUID  `json:"entity_id"`
	FlowID       uuid.UUID  `json:"flow_id,omitempty"`
	CurrentOrder int        `json:"current_order"`
	TotalSteps   int        `json:"total_steps"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	PreApproved  bool       `json:"pre_approved"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RecordResponse is one audit-trail entry
type RecordResponse struct {
	ID        uuid.UUID `json:"id"`
	StepOrder int       `json:"step_order"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Decision  string    `json:"decision"`
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToFlowResponse maps a flow aggregate to its API representation
func ToFlowResponse(f *approval.Flow) FlowResponse {
	steps := make([]StepResponse, 0, len(f.Steps))
	for _, s := range f.Steps {
		steps = append(steps, StepResponse{
			ID:     s.ID,
			Order:  s.Order,
			RoleID: s.RoleID,
			UserID: s.UserID,
			Label:  s.Label,
		})
	}
	return FlowResponse{
		ID:         f.ID,
		Name:       f.Name,
		Module:     f.Module.String(),
		Department: f.Department,
		Steps:      steps,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// ToStateResponse maps an approval state to its API representation
func ToStateResponse(st *approval.State) StateResponse {
	return StateResponse{
		ID:           st.ID,
		Module:       st.Module.String(),
		EntityID:     st.EntityID,
		FlowID:       st.FlowID,
		CurrentOrder: st.CurrentOrder,
		TotalSteps:   st.TotalSteps,
		Status:       st.Status.String(),
		Progress:     st.Progress(),
		PreApproved:  st.TotalSteps == 0,
		CompletedAt:  st.CompletedAt,
	}
}

// ToRecordResponse maps an audit record to its API representation
func ToRecordResponse(r approval.Record) RecordResponse {
	return RecordResponse{
		ID:        r.ID,
		StepOrder: r.StepOrder,
		ActorID:   r.ActorID,
		ActorName: r.ActorName,
		Decision:  string(r.Decision),
		Remarks:   r.Remarks,
		CreatedAt: r.CreatedAt,
	}
}
