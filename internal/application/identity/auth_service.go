package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/domain/identity"
	"github.com/ucrm/backend/internal/domain/shared"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(user *identity.User) (token string, expiresAt time.Time, err error)
}

// AuthService authenticates staff accounts and issues access tokens
type AuthService struct {
	userRepo identity.UserRepository
	issuer   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, issuer TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login verifies credentials and returns a signed token. Unknown
// usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("failed login attempt", zap.String("username", req.Username))
		return nil, identity.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, identity.ErrUserDeactivated
	}

	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Login timestamp is best effort, the token is already valid
		s.logger.Error("failed to record login", zap.String("username", user.Username), zap.Error(err))
	}

	s.logger.Info("user logged in", zap.String("username", user.Username))

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      ToUserResponse(user),
	}, nil
}
