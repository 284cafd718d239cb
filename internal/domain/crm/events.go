package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// Event type names for the crm context
const (
	EventTypeApplicationSubmitted     = "ApplicationSubmitted"
	EventTypeApplicationStatusChanged = "ApplicationStatusChanged"
	EventTypeApplicationVerified      = "ApplicationVerified"
	EventTypeApplicationRejected      = "ApplicationRejected"
	EventTypeApplicationEnergized     = "ApplicationEnergized"
	EventTypeInspectionScheduled      = "InspectionScheduled"
	EventTypeInspectionCompleted      = "InspectionCompleted"
)

// ApplicationSubmittedEvent is raised when a new application is filed
type ApplicationSubmittedEvent struct {
	shared.BaseDomainEvent
	ApplicationID     uuid.UUID      `json:"application_id"`
	ApplicationNumber string         `json:"application_number"`
	AccountID         uuid.UUID      `json:"account_id"`
	ApplicantName     string         `json:"applicant_name"`
	ConnectionType    ConnectionType `json:"connection_type"`
}

// EventType returns the event type name
func (e *ApplicationSubmittedEvent) EventType() string {
	return EventTypeApplicationSubmitted
}

// NewApplicationSubmittedEvent creates a new ApplicationSubmittedEvent
func NewApplicationSubmittedEvent(a *CustomerApplication) *ApplicationSubmittedEvent {
	return &ApplicationSubmittedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeApplicationSubmitted, "CustomerApplication", a.ID),
		ApplicationID:     a.ID,
		ApplicationNumber: a.ApplicationNumber,
		AccountID:         a.AccountID,
		ApplicantName:     a.ApplicantName,
		ConnectionType:    a.ConnectionType,
	}
}

// ApplicationStatusChangedEvent is raised on each lifecycle transition
type ApplicationStatusChangedEvent struct {
	shared.BaseDomainEvent
	ApplicationID uuid.UUID         `json:"application_id"`
	FromStatus    ApplicationStatus `json:"from_status"`
	ToStatus      ApplicationStatus `json:"to_status"`
}

// EventType returns the event type name
func (e *ApplicationStatusChangedEvent) EventType() string {
	return EventTypeApplicationStatusChanged
}

// NewApplicationStatusChangedEvent creates a new ApplicationStatusChangedEvent
func NewApplicationStatusChangedEvent(a *CustomerApplication, from ApplicationStatus) *ApplicationStatusChangedEvent {
	return &ApplicationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationStatusChanged, "CustomerApplication", a.ID),
		ApplicationID:   a.ID,
		FromStatus:      from,
		ToStatus:        a.Status,
	}
}

// ApplicationVerifiedEvent is raised when the inspection outcome verifies
// the application. Handlers create the energization payables off it.
type ApplicationVerifiedEvent struct {
	shared.BaseDomainEvent
	ApplicationID  uuid.UUID      `json:"application_id"`
	AccountID      uuid.UUID      `json:"account_id"`
	ConnectionType ConnectionType `json:"connection_type"`
}

// EventType returns the event type name
func (e *ApplicationVerifiedEvent) EventType() string {
	return EventTypeApplicationVerified
}

// NewApplicationVerifiedEvent creates a new ApplicationVerifiedEvent
func NewApplicationVerifiedEvent(a *CustomerApplication) *ApplicationVerifiedEvent {
	return &ApplicationVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationVerified, "CustomerApplication", a.ID),
		ApplicationID:   a.ID,
		AccountID:       a.AccountID,
		ConnectionType:  a.ConnectionType,
	}
}

// ApplicationRejectedEvent is raised when an application is declined
type ApplicationRejectedEvent struct {
	shared.BaseDomainEvent
	ApplicationID uuid.UUID `json:"application_id"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *ApplicationRejectedEvent) EventType() string {
	return EventTypeApplicationRejected
}

// NewApplicationRejectedEvent creates a new ApplicationRejectedEvent
func NewApplicationRejectedEvent(a *CustomerApplication, reason string) *ApplicationRejectedEvent {
	return &ApplicationRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationRejected, "CustomerApplication", a.ID),
		ApplicationID:   a.ID,
		Reason:          reason,
	}
}

// ApplicationEnergizedEvent is raised when the connection goes live
type ApplicationEnergizedEvent struct {
	shared.BaseDomainEvent
	ApplicationID uuid.UUID `json:"application_id"`
	AccountID     uuid.UUID `json:"account_id"`
}

// EventType returns the event type name
func (e *ApplicationEnergizedEvent) EventType() string {
	return EventTypeApplicationEnergized
}

// NewApplicationEnergizedEvent creates a new ApplicationEnergizedEvent
func NewApplicationEnergizedEvent(a *CustomerApplication) *ApplicationEnergizedEvent {
	return &ApplicationEnergizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApplicationEnergized, "CustomerApplication", a.ID),
		ApplicationID:   a.ID,
		AccountID:       a.AccountID,
	}
}

// InspectionScheduledEvent is raised when a field visit is booked
type InspectionScheduledEvent struct {
	shared.BaseDomainEvent
	InspectionID  uuid.UUID `json:"inspection_id"`
	ApplicationID uuid.UUID `json:"application_id"`
	InspectorID   uuid.UUID `json:"inspector_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// EventType returns the event type name
func (e *InspectionScheduledEvent) EventType() string {
	return EventTypeInspectionScheduled
}

// NewInspectionScheduledEvent creates a new InspectionScheduledEvent
func NewInspectionScheduledEvent(i *Inspection) *InspectionScheduledEvent {
	return &InspectionScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionScheduled, "Inspection", i.ID),
		InspectionID:    i.ID,
		ApplicationID:   i.ApplicationID,
		InspectorID:     i.InspectorID,
		ScheduledAt:     i.ScheduledAt,
	}
}

// InspectionCompletedEvent is raised when the inspector files findings.
// The handler initializes the inspection approval flow off it.
type InspectionCompletedEvent struct {
	shared.BaseDomainEvent
	InspectionID  uuid.UUID `json:"inspection_id"`
	ApplicationID uuid.UUID `json:"application_id"`
	InspectorID   uuid.UUID `json:"inspector_id"`
}

// EventType returns the event type name
func (e *InspectionCompletedEvent) EventType() string {
	return EventTypeInspectionCompleted
}

// NewInspectionCompletedEvent creates a new InspectionCompletedEvent
func NewInspectionCompletedEvent(i *Inspection) *InspectionCompletedEvent {
	return &InspectionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInspectionCompleted, "Inspection", i.ID),
		InspectionID:    i.ID,
		ApplicationID:   i.ApplicationID,
		InspectorID:     i.InspectorID,
	}
}
