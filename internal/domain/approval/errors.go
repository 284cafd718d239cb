package approval

import "github.com/ucrm/backend/internal/domain/shared"

// Approval-specific domain errors
var (
	// ErrInvalidModelType is raised when an unsupported entity type is passed
	// to an approval operation. It is a programming error, not recoverable by
	// caller logic.
	ErrInvalidModelType = shared.NewDomainError("INVALID_MODEL_TYPE", "Unsupported entity type for approval")

	// ErrNoActiveApprovalFlow is raised when approve/reject is attempted for
	// an entity with no configured flow. Recoverable: nothing is mutated.
	ErrNoActiveApprovalFlow = shared.NewDomainError("NO_ACTIVE_APPROVAL_FLOW", "No approval flow is configured for this entity")
)
