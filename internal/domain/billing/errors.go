package billing

import "github.com/ucrm/backend/internal/domain/shared"

// Billing-specific domain errors
var (
	// ErrInvalidPaymentAmount is raised when a payment submission carries no
	// positive tender and no credit-balance use. Recoverable: nothing mutated.
	ErrInvalidPaymentAmount = shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment must include a positive tender or credit balance use")

	// ErrNoActiveSeries is raised when the acting cashier has no active
	// transaction series assigned. The whole payment aborts.
	ErrNoActiveSeries = shared.NewDomainError("NO_ACTIVE_SERIES", "No active transaction series is assigned to this user")

	// ErrSeriesExhausted is raised when the active series has reached its
	// configured end number. The whole payment aborts.
	ErrSeriesExhausted = shared.NewDomainError("SERIES_EXHAUSTED", "The active transaction series has reached its end number")
)
