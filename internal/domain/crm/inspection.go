package crm

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// InspectionStatus represents the lifecycle of a field inspection
type InspectionStatus string

const (
	InspectionStatusScheduled InspectionStatus = "SCHEDULED"
	InspectionStatusCompleted InspectionStatus = "COMPLETED"
	InspectionStatusCancelled InspectionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InspectionStatus
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusScheduled, InspectionStatusCompleted, InspectionStatusCancelled:
		return true
	}
	return false
}

// Inspection is one field visit that checks an application's premises.
// Recording the result starts the inspection's own approval flow; the
// flow's outcome decides whether the application is verified.
type Inspection struct {
	shared.BaseAggregateRoot
	ApplicationID uuid.UUID        `json:"application_id" gorm:"type:uuid;not null;index"`
	InspectorID   uuid.UUID        `json:"inspector_id" gorm:"type:uuid;not null"`
	ScheduledAt   time.Time        `json:"scheduled_at" gorm:"not null"`
	Status        InspectionStatus `json:"status" gorm:"type:varchar(20);not null"`
	Findings      string           `json:"findings,omitempty" gorm:"type:varchar(2000)"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
}

// TableName returns the table name for GORM
func (Inspection) TableName() string {
	return "inspections"
}

// NewInspection schedules an inspection for an application
func NewInspection(applicationID, inspectorID uuid.UUID, scheduledAt time.Time) (*Inspection, error) {
	if applicationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPLICATION", "Application ID cannot be empty")
	}
	if inspectorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INSPECTOR", "Inspector ID cannot be empty")
	}
	if scheduledAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Scheduled date cannot be empty")
	}

	insp := &Inspection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ApplicationID:     applicationID,
		InspectorID:       inspectorID,
		ScheduledAt:       scheduledAt,
		Status:            InspectionStatusScheduled,
	}

	insp.AddDomainEvent(NewInspectionScheduledEvent(insp))

	return insp, nil
}

// RecordResult completes the inspection with the inspector's findings
func (i *Inspection) RecordResult(findings string) error {
	if i.Status != InspectionStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record result for %s inspection", i.Status))
	}
	if findings == "" {
		return shared.NewDomainError("INVALID_FINDINGS", "Inspection findings cannot be empty")
	}

	now := time.Now()
	i.Status = InspectionStatusCompleted
	i.Findings = findings
	i.CompletedAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewInspectionCompletedEvent(i))

	return nil
}

// Cancel drops a scheduled inspection so a new one can be booked
func (i *Inspection) Cancel() error {
	if i.Status != InspectionStatusScheduled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel %s inspection", i.Status))
	}

	i.Status = InspectionStatusCancelled
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}
