package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// ApplicationRepository persists customer applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *CustomerApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerApplication, error)
	FindByNumber(ctx context.Context, applicationNumber string) (*CustomerApplication, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*CustomerApplication, error)
	List(ctx context.Context, status *ApplicationStatus, filter shared.Filter) (*shared.Paginated[CustomerApplication], error)
	// SaveWithLock persists changes guarded by the aggregate version
	SaveWithLock(ctx context.Context, app *CustomerApplication) error
	// GenerateApplicationNumber issues the next APP-YYYYMMDD-NNNNN number
	GenerateApplicationNumber(ctx context.Context) (string, error)
}

// InspectionRepository persists field inspections
type InspectionRepository interface {
	Create(ctx context.Context, insp *Inspection) error
	FindByID(ctx context.Context, id uuid.UUID) (*Inspection, error)
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]*Inspection, error)
	Save(ctx context.Context, insp *Inspection) error
}
