package identity

import "github.com/ucrm/backend/internal/domain/shared"

var (
	// ErrInvalidCredentials deliberately does not say whether the username
	// or the password was wrong.
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Username or password is incorrect")
	ErrUserDeactivated    = shared.NewDomainError("USER_DEACTIVATED", "User account is deactivated")
	ErrUsernameTaken      = shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
)
