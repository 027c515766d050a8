package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/apparelstore/internal/auth"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// MsgInvalidCredentials is the only answer a failed login gets.
const MsgInvalidCredentials = "Invalid email or password"

// TokenIssuer signs admin tokens. *auth.JWTManager satisfies it.
type TokenIssuer interface {
	GenerateToken(subject, email, role string) (string, error)
	Expiry() time.Duration
}

// LoginInput is the admin login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService checks back-office credentials against the configured admin account.
type AuthService struct {
	email        string
	passwordHash string
	tokens       TokenIssuer
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService creates a new auth service. An empty passwordHash disables login.
func NewAuthService(email, passwordHash string, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		tokens:       tokens,
		logger:       logger,
		now:          time.Now,
	}
}

// Login verifies the credentials and issues an admin token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// The hash is always compared so a wrong email costs the same as a wrong password.
	passwordOK := s.passwordHash != "" && auth.CheckPassword(s.passwordHash, input.Password)
	if s.email == "" || email != s.email || !passwordOK {
		s.logger.WarnContext(ctx, "admin login rejected", slog.String("email", email))
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(email, email, auth.RoleAdmin)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.logger.InfoContext(ctx, "admin logged in", slog.String("email", email))
	return &LoginResult{
		Token:     token,
		ExpiresAt: s.now().UTC().Add(s.tokens.Expiry()),
	}, nil
}
