// Package token issues and verifies signed session tokens. Tokens are
// stateless: validity is purely a function of signature and expiration.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskhive/task-service/internal/apperrors"
)

// Claims carries the authenticated identity embedded in a session token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a token manager. ttl bounds the lifetime of issued
// tokens.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue produces a signed token embedding the user's id and email.
func (m *Manager) Issue(userID, email string) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDependency, "sign token", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Expired
// tokens are distinguished from malformed or tampered ones.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.CodeTokenExpired, "token expired", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid token", err)
	}
	if claims.UserID == "" {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "token carries no user id")
	}
	return claims, nil
}
