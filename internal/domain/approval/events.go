package approval

import (
	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// Event type names for the approval context
const (
	EventTypeFlowCreated       = "ApprovalFlowCreated"
	EventTypeStateInitialized  = "ApprovalStateInitialized"
	EventTypeStepAdvanced      = "ApprovalStepAdvanced"
	EventTypeApprovalCompleted = "ApprovalCompleted"
	EventTypeApprovalRejected  = "ApprovalRejected"
	EventTypeApprovalReset     = "ApprovalReset"
)

// FlowCreatedEvent is raised when a new approval flow is configured
type FlowCreatedEvent struct {
	shared.BaseDomainEvent
	FlowID     uuid.UUID `json:"flow_id"`
	Name       string    `json:"name"`
	Module     Module    `json:"module"`
	Department string    `json:"department,omitempty"`
	TotalSteps int       `json:"total_steps"`
}

// EventType returns the event type name
func (e *FlowCreatedEvent) EventType() string {
	return EventTypeFlowCreated
}

// NewFlowCreatedEvent creates a new FlowCreatedEvent
func NewFlowCreatedEvent(f *Flow) *FlowCreatedEvent {
	return &FlowCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFlowCreated, "ApprovalFlow", f.ID),
		FlowID:          f.ID,
		Name:            f.Name,
		Module:          f.Module,
		Department:      f.Department,
		TotalSteps:      f.TotalSteps(),
	}
}

// StateInitializedEvent is raised when an entity enters its approval flow
type StateInitializedEvent struct {
	shared.BaseDomainEvent
	StateID    uuid.UUID `json:"state_id"`
	Module     Module    `json:"module"`
	EntityID   uuid.UUID `json:"entity_id"`
	TotalSteps int       `json:"total_steps"`
}

// EventType returns the event type name
func (e *StateInitializedEvent) EventType() string {
	return EventTypeStateInitialized
}

// NewStateInitializedEvent creates a new StateInitializedEvent
func NewStateInitializedEvent(st *State) *StateInitializedEvent {
	return &StateInitializedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStateInitialized, "ApprovalState", st.ID),
		StateID:         st.ID,
		Module:          st.Module,
		EntityID:        st.EntityID,
		TotalSteps:      st.TotalSteps,
	}
}

// StepAdvancedEvent is raised when an intermediate step is approved
type StepAdvancedEvent struct {
	shared.BaseDomainEvent
	StateID      uuid.UUID `json:"state_id"`
	Module       Module    `json:"module"`
	EntityID     uuid.UUID `json:"entity_id"`
	CurrentOrder int       `json:"current_order"`
	TotalSteps   int       `json:"total_steps"`
}

// EventType returns the event type name
func (e *StepAdvancedEvent) EventType() string {
	return EventTypeStepAdvanced
}

// NewStepAdvancedEvent creates a new StepAdvancedEvent
func NewStepAdvancedEvent(st *State) *StepAdvancedEvent {
	return &StepAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStepAdvanced, "ApprovalState", st.ID),
		StateID:         st.ID,
		Module:          st.Module,
		EntityID:        st.EntityID,
		CurrentOrder:    st.CurrentOrder,
		TotalSteps:      st.TotalSteps,
	}
}

// CompletedEvent is raised when the final step is approved. Handlers in
// the owning module react to it to advance the entity's own status.
type CompletedEvent struct {
	shared.BaseDomainEvent
	StateID  uuid.UUID `json:"state_id"`
	Module   Module    `json:"module"`
	EntityID uuid.UUID `json:"entity_id"`
}

// EventType returns the event type name
func (e *CompletedEvent) EventType() string {
	return EventTypeApprovalCompleted
}

// NewCompletedEvent creates a new CompletedEvent
func NewCompletedEvent(st *State) *CompletedEvent {
	return &CompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalCompleted, "ApprovalState", st.ID),
		StateID:         st.ID,
		Module:          st.Module,
		EntityID:        st.EntityID,
	}
}

// RejectedEvent is raised when any step is rejected
type RejectedEvent struct {
	shared.BaseDomainEvent
	StateID   uuid.UUID `json:"state_id"`
	Module    Module    `json:"module"`
	EntityID  uuid.UUID `json:"entity_id"`
	StepOrder int       `json:"step_order"`
}

// EventType returns the event type name
func (e *RejectedEvent) EventType() string {
	return EventTypeApprovalRejected
}

// NewRejectedEvent creates a new RejectedEvent
func NewRejectedEvent(st *State) *RejectedEvent {
	return &RejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalRejected, "ApprovalState", st.ID),
		StateID:         st.ID,
		Module:          st.Module,
		EntityID:        st.EntityID,
		StepOrder:       st.CurrentOrder,
	}
}

// ResetEvent is raised when a state is reset back to step 1
type ResetEvent struct {
	shared.BaseDomainEvent
	StateID  uuid.UUID `json:"state_id"`
	Module   Module    `json:"module"`
	EntityID uuid.UUID `json:"entity_id"`
}

// EventType returns the event type name
func (e *ResetEvent) EventType() string {
	return EventTypeApprovalReset
}

// NewResetEvent creates a new ResetEvent
func NewResetEvent(st *State) *ResetEvent {
	return &ResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApprovalReset, "ApprovalState", st.ID),
		StateID:         st.ID,
		Module:          st.Module,
		EntityID:        st.EntityID,
	}
}
