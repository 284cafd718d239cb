package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// Module identifies the business entity type an approval flow governs
type Module string

const (
	ModuleCustomerApplication Module = "CUSTOMER_APPLICATION"
	ModuleInspection          Module = "INSPECTION"
)

// IsValid checks if the module is a supported approval target
func (m Module) IsValid() bool {
	switch m {
	case ModuleCustomerApplication, ModuleInspection:
		return true
	}
	return false
}

// String returns the string representation of Module
func (m Module) String() string {
	return string(m)
}

// FlowStep is one stage in an approval flow. Exactly one of RoleID or
// UserID designates the approver. Steps are immutable once the flow is in
// use; editing a flow replaces its steps wholesale.
type FlowStep struct {
	ID     uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	FlowID uuid.UUID  `json:"flow_id" gorm:"type:uuid;not null;index"`
	Order  int        `json:"order" gorm:"column:step_order;not null"` // 1-based, unique per flow
	RoleID *uuid.UUID `json:"role_id,omitempty" gorm:"type:uuid"`
	UserID *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	Label  string     `json:"label" gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (FlowStep) TableName() string {
	return "approval_flow_steps"
}

// NewFlowStep creates a flow step designated to a role or a user
func NewFlowStep(flowID uuid.UUID, order int, roleID, userID *uuid.UUID, label string) (*FlowStep, error) {
	if order < 1 {
		return nil, shared.NewDomainError("INVALID_STEP_ORDER", "Step order must be 1 or greater")
	}
	if (roleID == nil) == (userID == nil) {
		return nil, shared.NewDomainError("INVALID_STEP_APPROVER", "Exactly one of role or user must designate the approver")
	}
	return &FlowStep{
		ID:     uuid.New(),
		FlowID: flowID,
		Order:  order,
		RoleID: roleID,
		UserID: userID,
		Label:  label,
	}, nil
}

// IsRoleGated returns true when the step is designated to a role
func (s *FlowStep) IsRoleGated() bool {
	return s.RoleID != nil
}

// StepInput describes a step when creating or replacing a flow's steps
type StepInput struct {
	RoleID *uuid.UUID
	UserID *uuid.UUID
	Label  string
}

// Flow is a named ordered sequence of approval steps for one module,
// optionally scoped to a department. It is configuration: execution state
// lives in State.
type Flow struct {
	shared.BaseAggregateRoot
	Name       string     `json:"name" gorm:"type:varchar(200);not null"`
	Module     Module     `json:"module" gorm:"type:varchar(50);not null;index"`
	Department string     `json:"department" gorm:"type:varchar(100);not null;default:''"` // empty = applies to all departments
	Steps      []FlowStep `json:"steps" gorm:"foreignKey:FlowID"`
}

// TableName returns the table name for GORM
func (Flow) TableName() string {
	return "approval_flows"
}

// NewFlow creates a new approval flow with its ordered steps
func NewFlow(name string, module Module, department string, steps []StepInput) (*Flow, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FLOW_NAME", "Flow name cannot be empty")
	}
	if !module.IsValid() {
		return nil, ErrInvalidModelType
	}
	if len(steps) == 0 {
		return nil, shared.NewDomainError("INVALID_FLOW_STEPS", "Flow must have at least one step")
	}

	f := &Flow{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Module:            module,
		Department:        department,
		Steps:             make([]FlowStep, 0, len(steps)),
	}
	if err := f.setSteps(steps); err != nil {
		return nil, err
	}

	f.AddDomainEvent(NewFlowCreatedEvent(f))

	return f, nil
}

// ReplaceSteps swaps the flow's steps for a new ordered set.
// In-flight approval states keep their recorded step order; only new
// initializations see the updated steps.
func (f *Flow) ReplaceSteps(steps []StepInput) error {
	if len(steps) == 0 {
		return shared.NewDomainError("INVALID_FLOW_STEPS", "Flow must have at least one step")
	}
	if err := f.setSteps(steps); err != nil {
		return err
	}
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
	return nil
}

func (f *Flow) setSteps(steps []StepInput) error {
	rebuilt := make([]FlowStep, 0, len(steps))
	for i, in := range steps {
		step, err := NewFlowStep(f.ID, i+1, in.RoleID, in.UserID, in.Label)
		if err != nil {
			return err
		}
		rebuilt = append(rebuilt, *step)
	}
	f.Steps = rebuilt
	return nil
}

// TotalSteps returns the number of steps in the flow
func (f *Flow) TotalSteps() int {
	return len(f.Steps)
}

// StepAt returns the step with the given 1-based order
func (f *Flow) StepAt(order int) (*FlowStep, error) {
	if order < 1 || order > len(f.Steps) {
		return nil, shared.NewDomainError("INVALID_STEP_ORDER", "No step at the requested order")
	}
	return &f.Steps[order-1], nil
}
