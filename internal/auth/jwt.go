package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/apparelstore/pkg/middleware"
)

// RoleAdmin is the only role the back office grants.
const RoleAdmin = "admin"

const issuer = "apparelstore"

// Claims represents the JWT claims for an admin access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 admin tokens.
type JWTManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager with the given secret and token lifetime.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the lifetime of issued tokens.
func (m *JWTManager) Expiry() time.Duration { return m.expiry }

// GenerateToken creates a signed token for subject.
func (m *JWTManager) GenerateToken(subject, email, role string) (string, error) {
	now := m.now().UTC()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token, returning the claims.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Validator adapts the manager to middleware.Auth.
func (m *JWTManager) Validator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			Subject: claims.Subject,
			Email:   claims.Email,
			Role:    claims.Role,
		}, nil
	}
}
