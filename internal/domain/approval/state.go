package approval

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// Status represents the progress of an entity through its approval flow
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once the flow has completed or been rejected.
// Terminal states only leave via an explicit reset.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// State tracks one entity's progress through its approval flow.
// It is the aggregate root for approval execution: the flow itself is
// configuration and is never mutated here.
type State struct {
	shared.BaseAggregateRoot
	Module       Module     `json:"module" gorm:"type:varchar(50);not null;uniqueIndex:idx_approval_states_entity"`
	EntityID     uuid.UUID  `json:"entity_id" gorm:"type:uuid;not null;uniqueIndex:idx_approval_states_entity"`
	FlowID       uuid.UUID  `json:"flow_id" gorm:"type:uuid"`
	CurrentOrder int        `json:"current_order" gorm:"not null"` // 1-based step pointer
	TotalSteps   int        `json:"total_steps" gorm:"not null"`   // snapshot of the flow size at initialization
	Status       Status     `json:"status" gorm:"type:varchar(20);not null"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the table name for GORM
func (State) TableName() string {
	return "approval_states"
}

// NewState initializes approval progress for an entity at step 1, pending
func NewState(module Module, entityID uuid.UUID, flow *Flow) (*State, error) {
	if !module.IsValid() {
		return nil, ErrInvalidModelType
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID cannot be empty")
	}
	if flow == nil || flow.TotalSteps() == 0 {
		return nil, ErrNoActiveApprovalFlow
	}
	if flow.Module != module {
		return nil, shared.NewDomainError("FLOW_MODULE_MISMATCH", fmt.Sprintf("Flow governs %s, not %s", flow.Module, module))
	}

	st := &State{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Module:            module,
		EntityID:          entityID,
		FlowID:            flow.ID,
		CurrentOrder:      1,
		TotalSteps:        flow.TotalSteps(),
		Status:            StatusPending,
	}

	st.AddDomainEvent(NewStateInitializedEvent(st))

	return st, nil
}

// NewPreApprovedState records an entity that entered approval while no
// flow was configured for its module. The absence of a flow approves it
// immediately; completion cascades still fire off the emitted event.
func NewPreApprovedState(module Module, entityID uuid.UUID) (*State, error) {
	if !module.IsValid() {
		return nil, ErrInvalidModelType
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID cannot be empty")
	}

	now := time.Now()
	st := &State{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Module:            module,
		EntityID:          entityID,
		CurrentOrder:      1,
		TotalSteps:        0,
		Status:            StatusApproved,
		CompletedAt:       &now,
	}

	st.AddDomainEvent(NewCompletedEvent(st))

	return st, nil
}

// Advance records an approval at the current step. On the last step the
// state becomes APPROVED; otherwise the step pointer moves forward and the
// state stays PENDING. Returns true when the flow completed.
func (st *State) Advance() (bool, error) {
	if st.Status.IsTerminal() {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve: flow already %s", st.Status))
	}

	completed := st.CurrentOrder >= st.TotalSteps
	if completed {
		now := time.Now()
		st.Status = StatusApproved
		st.CompletedAt = &now
		st.AddDomainEvent(NewCompletedEvent(st))
	} else {
		st.CurrentOrder++
		st.AddDomainEvent(NewStepAdvancedEvent(st))
	}

	st.UpdatedAt = time.Now()
	st.IncrementVersion()

	return completed, nil
}

// Reject halts the flow at the current step. The step pointer does not
// move so the rejection point stays visible in the state.
func (st *State) Reject() error {
	if st.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject: flow already %s", st.Status))
	}

	now := time.Now()
	st.Status = StatusRejected
	st.CompletedAt = &now
	st.UpdatedAt = now
	st.IncrementVersion()

	st.AddDomainEvent(NewRejectedEvent(st))

	return nil
}

// Reset returns the state to step 1, pending. Audit records are kept;
// only the pointer and status are cleared.
func (st *State) Reset() {
	st.CurrentOrder = 1
	st.Status = StatusPending
	st.CompletedAt = nil
	st.UpdatedAt = time.Now()
	st.IncrementVersion()

	st.AddDomainEvent(NewResetEvent(st))
}

// Progress returns completion as a rounded percentage. Exactly 100 when
// approved, otherwise proportional to fully cleared steps, never above 100.
func (st *State) Progress() int {
	if st.Status == StatusApproved {
		return 100
	}
	if st.TotalSteps == 0 {
		return 0
	}
	pct := float64(st.CurrentOrder-1) / float64(st.TotalSteps) * 100
	rounded := int(pct + 0.5)
	if rounded > 100 {
		return 100
	}
	return rounded
}

// IsPending returns true while the flow is still in progress
func (st *State) IsPending() bool {
	return st.Status == StatusPending
}

// IsApproved returns true once every step has been approved
func (st *State) IsApproved() bool {
	return st.Status == StatusApproved
}

// IsRejected returns true once any step has been rejected
func (st *State) IsRejected() bool {
	return st.Status == StatusRejected
}
