package crm

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// ApplicationStatus represents where a customer application sits in the
// intake-to-energization lifecycle
type ApplicationStatus string

const (
	ApplicationStatusPendingCCDApproval  ApplicationStatus = "PENDING_CCD_APPROVAL"
	ApplicationStatusForInspection       ApplicationStatus = "FOR_INSPECTION"
	ApplicationStatusInspectionScheduled ApplicationStatus = "INSPECTION_SCHEDULED"
	ApplicationStatusForPayment          ApplicationStatus = "FOR_PAYMENT"
	ApplicationStatusForSigning          ApplicationStatus = "FOR_SIGNING"
	ApplicationStatusForEnergization     ApplicationStatus = "FOR_ENERGIZATION"
	ApplicationStatusEnergized           ApplicationStatus = "ENERGIZED"
	ApplicationStatusRejected            ApplicationStatus = "REJECTED"
)

// IsValid checks if the status is a valid ApplicationStatus
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPendingCCDApproval, ApplicationStatusForInspection,
		ApplicationStatusInspectionScheduled, ApplicationStatusForPayment,
		ApplicationStatusForSigning, ApplicationStatusForEnergization,
		ApplicationStatusEnergized, ApplicationStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ApplicationStatus
func (s ApplicationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	switch s {
	case ApplicationStatusPendingCCDApproval:
		return target == ApplicationStatusForInspection || target == ApplicationStatusRejected
	case ApplicationStatusForInspection:
		return target == ApplicationStatusInspectionScheduled
	case ApplicationStatusInspectionScheduled:
		return target == ApplicationStatusForPayment || target == ApplicationStatusRejected
	case ApplicationStatusForPayment:
		return target == ApplicationStatusForSigning
	case ApplicationStatusForSigning:
		return target == ApplicationStatusForEnergization
	case ApplicationStatusForEnergization:
		return target == ApplicationStatusEnergized
	case ApplicationStatusEnergized, ApplicationStatusRejected:
		return false // Terminal states
	}
	return false
}

// ConnectionType classifies the requested service connection
type ConnectionType string

const (
	ConnectionTypeResidential ConnectionType = "RESIDENTIAL"
	ConnectionTypeCommercial  ConnectionType = "COMMERCIAL"
	ConnectionTypeIndustrial  ConnectionType = "INDUSTRIAL"
	ConnectionTypeGovernment  ConnectionType = "GOVERNMENT"
)

// IsValid checks if the connection type is valid
func (c ConnectionType) IsValid() bool {
	switch c {
	case ConnectionTypeResidential, ConnectionTypeCommercial,
		ConnectionTypeIndustrial, ConnectionTypeGovernment:
		return true
	}
	return false
}

// CustomerApplication is one request for a new service connection. Its
// status advances through approval, inspection, payment and signing; the
// transitions between those stages are driven by event handlers reacting
// to approval and payment outcomes.
type CustomerApplication struct {
	shared.BaseAggregateRoot
	ApplicationNumber string            `json:"application_number" gorm:"type:varchar(50);not null;uniqueIndex"`
	AccountID         uuid.UUID         `json:"account_id" gorm:"type:uuid;not null;index"`
	ApplicantName     string            `json:"applicant_name" gorm:"type:varchar(200);not null"`
	Address           string            `json:"address" gorm:"type:varchar(500);not null"`
	ContactNumber     string            `json:"contact_number" gorm:"type:varchar(50)"`
	Email             string            `json:"email" gorm:"type:varchar(200)"`
	ConnectionType    ConnectionType    `json:"connection_type" gorm:"type:varchar(20);not null"`
	Status            ApplicationStatus `json:"status" gorm:"type:varchar(30);not null;index"`
	RejectionReason   string            `json:"rejection_reason,omitempty" gorm:"type:varchar(1000)"`
	VerifiedAt        *time.Time        `json:"verified_at,omitempty"`
	SignedAt          *time.Time        `json:"signed_at,omitempty"`
	EnergizedAt       *time.Time        `json:"energized_at,omitempty"`
}

// TableName returns the table name for GORM
func (CustomerApplication) TableName() string {
	return "customer_applications"
}

// NewCustomerApplication creates a new application pending CCD approval.
// The consumer account is provisioned together with the application; its
// ID keys the application's payables and credit balance.
func NewCustomerApplication(applicationNumber, applicantName, address, contactNumber, email string, connectionType ConnectionType) (*CustomerApplication, error) {
	if applicationNumber == "" {
		return nil, shared.NewDomainError("INVALID_APPLICATION_NUMBER", "Application number cannot be empty")
	}
	if applicantName == "" {
		return nil, shared.NewDomainError("INVALID_APPLICANT", "Applicant name cannot be empty")
	}
	if address == "" {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Service address cannot be empty")
	}
	if !connectionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONNECTION_TYPE", "Connection type is not valid")
	}

	app := &CustomerApplication{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ApplicationNumber: applicationNumber,
		AccountID:         uuid.New(),
		ApplicantName:     applicantName,
		Address:           address,
		ContactNumber:     contactNumber,
		Email:             email,
		ConnectionType:    connectionType,
		Status:            ApplicationStatusPendingCCDApproval,
	}

	app.AddDomainEvent(NewApplicationSubmittedEvent(app))

	return app, nil
}

// MarkForInspection moves the application past CCD approval
func (a *CustomerApplication) MarkForInspection() error {
	if err := a.transition(ApplicationStatusForInspection); err != nil {
		return err
	}
	a.AddDomainEvent(NewApplicationStatusChangedEvent(a, ApplicationStatusPendingCCDApproval))
	return nil
}

// MarkInspectionScheduled records that a field inspection has been booked
func (a *CustomerApplication) MarkInspectionScheduled() error {
	if err := a.transition(ApplicationStatusInspectionScheduled); err != nil {
		return err
	}
	a.AddDomainEvent(NewApplicationStatusChangedEvent(a, ApplicationStatusForInspection))
	return nil
}

// MarkVerified records a verified inspection and moves the application to
// payment. The energization payables are created by the verification
// handler in the same transaction.
func (a *CustomerApplication) MarkVerified() error {
	if err := a.transition(ApplicationStatusForPayment); err != nil {
		return err
	}
	now := time.Now()
	a.VerifiedAt = &now
	a.AddDomainEvent(NewApplicationVerifiedEvent(a))
	return nil
}

// MarkForSigning advances the application once its energization payables
// are all settled
func (a *CustomerApplication) MarkForSigning() error {
	if err := a.transition(ApplicationStatusForSigning); err != nil {
		return err
	}
	a.AddDomainEvent(NewApplicationStatusChangedEvent(a, ApplicationStatusForPayment))
	return nil
}

// MarkContractSigned records the signed service contract
func (a *CustomerApplication) MarkContractSigned() error {
	if err := a.transition(ApplicationStatusForEnergization); err != nil {
		return err
	}
	now := time.Now()
	a.SignedAt = &now
	a.AddDomainEvent(NewApplicationStatusChangedEvent(a, ApplicationStatusForSigning))
	return nil
}

// MarkEnergized completes the application lifecycle
func (a *CustomerApplication) MarkEnergized() error {
	if err := a.transition(ApplicationStatusEnergized); err != nil {
		return err
	}
	now := time.Now()
	a.EnergizedAt = &now
	a.AddDomainEvent(NewApplicationEnergizedEvent(a))
	return nil
}

// Reject declines the application. Allowed while CCD approval or
// inspection verification is still pending.
func (a *CustomerApplication) Reject(reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	if err := a.transition(ApplicationStatusRejected); err != nil {
		return err
	}
	a.RejectionReason = reason
	a.AddDomainEvent(NewApplicationRejectedEvent(a, reason))
	return nil
}

func (a *CustomerApplication) transition(target ApplicationStatus) error {
	if !a.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move application from %s to %s", a.Status, target))
	}
	a.Status = target
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
