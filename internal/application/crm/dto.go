package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/crm"
)

// CreateApplicationRequest files a new service connection application
type CreateApplicationRequest struct {
	ApplicantName  string `json:"applicant_name" binding:"required"`
	Address        string `json:"address" binding:"required"`
	ContactNumber  string `json:"contact_number,omitempty"`
	Email          string `json:"email,omitempty"`
	ConnectionType string `json:"connection_type" binding:"required"`
}

// ScheduleInspectionRequest books a field inspection for an application
type ScheduleInspectionRequest struct {
	ApplicationID uuid.UUID `json:"application_id" binding:"required"`
	InspectorID   uuid.UUID `json:"inspector_id" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
}

// RecordInspectionResultRequest files the inspector's findings
type RecordInspectionResultRequest struct {
	Findings string `json:"findings" binding:"required"`
}

// ApplicationResponse is the API representation of an application
type ApplicationResponse struct {
	ID                uuid.UUID  `json:"id"`
	ApplicationNumber string     `json:"application_number"`
	AccountID         uuid.UUID  `json:"account_id"`
	ApplicantName     string     `json:"applicant_name"`
	Address           string     `json:"address"`
	ContactNumber     string     `json:"contact_number,omitempty"`
	Email             string     `json:"email,omitempty"`
	ConnectionType    string     `json:"connection_type"`
	Status            string     `json:"status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	SignedAt          *time.Time `json:"signed_at,omitempty"`
	EnergizedAt       *time.Time `json:"energized_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// InspectionResponse is the API representation of an inspection
type InspectionResponse struct {
	ID            uuid.UUID  `json:"id"`
	ApplicationID uuid.UUID  `json:"application_id"`
	InspectorID   uuid.UUID  `json:"inspector_id"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Status        string     `json:"status"`
	Findings      string     `json:"findings,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// ToApplicationResponse maps an application aggregate to its API representation
func ToApplicationResponse(a *crm.CustomerApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:                a.ID,
		ApplicationNumber: a.ApplicationNumber,
		AccountID:         a.AccountID,
		ApplicantName:     a.ApplicantName,
		Address:           a.Address,
		ContactNumber:     a.ContactNumber,
		Email:             a.Email,
		ConnectionType:    string(a.ConnectionType),
		Status:            a.Status.String(),
		RejectionReason:   a.RejectionReason,
		VerifiedAt:        a.VerifiedAt,
		SignedAt:          a.SignedAt,
		EnergizedAt:       a.EnergizedAt,
		CreatedAt:         a.CreatedAt,
	}
}

// ToInspectionResponse maps an inspection aggregate to its API representation
func ToInspectionResponse(i *crm.Inspection) InspectionResponse {
	return InspectionResponse{
		ID:            i.ID,
		ApplicationID: i.ApplicationID,
		InspectorID:   i.InspectorID,
		ScheduledAt:   i.ScheduledAt,
		Status:        string(i.Status),
		Findings:      i.Findings,
		CompletedAt:   i.CompletedAt,
	}
}
