package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// Decision is the outcome recorded by an approver at one step
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// IsValid checks if the decision is valid
func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Record is one append-only audit entry for an approval or rejection
// action. Records survive resets.
type Record struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	StateID   uuid.UUID `json:"state_id" gorm:"type:uuid;not null;index"`
	Module    Module    `json:"module" gorm:"type:varchar(50);not null;index:idx_approval_records_entity"`
	EntityID  uuid.UUID `json:"entity_id" gorm:"type:uuid;not null;index:idx_approval_records_entity"`
	StepOrder int       `json:"step_order" gorm:"not null"`
	ActorID   uuid.UUID `json:"actor_id" gorm:"type:uuid;not null"`
	ActorName string    `json:"actor_name" gorm:"type:varchar(200)"`
	Decision  Decision  `json:"decision" gorm:"type:varchar(20);not null"`
	Remarks   string    `json:"remarks" gorm:"type:varchar(1000)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "approval_records"
}

// NewRecord creates an audit entry for one approval action
func NewRecord(st *State, actorID uuid.UUID, actorName string, decision Decision, remarks string) (*Record, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if !decision.IsValid() {
		return nil, shared.NewDomainError("INVALID_DECISION", "Decision must be APPROVED or REJECTED")
	}
	return &Record{
		ID:        uuid.New(),
		StateID:   st.ID,
		Module:    st.Module,
		EntityID:  st.EntityID,
		StepOrder: st.CurrentOrder,
		ActorID:   actorID,
		ActorName: actorName,
		Decision:  decision,
		Remarks:   remarks,
		CreatedAt: time.Now(),
	}, nil
}
