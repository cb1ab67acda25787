// Package auth issues and verifies session tokens for the API. The session
// replaces the ambient logged-in flag the ledger UI used to carry: the core
// packages never see it, only the HTTP layer does.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrInvalidToken   = errors.New("invalid session token")
)

// CredentialSource supplies the admin credential, typically the settings
// service.
type CredentialSource interface {
	AdminPassword(ctx context.Context) (string, error)
}

type Service struct {
	credentials CredentialSource
	secret      []byte
	sessionTTL  time.Duration
}

func NewService(credentials CredentialSource, secret string, sessionTTL time.Duration) *Service {
	return &Service{
		credentials: credentials,
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
	}
}

// Login checks the password against the configured admin credential and
// returns a signed session token.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	expected, err := s.credentials.AdminPassword(ctx)
	if err != nil {
		return "", fmt.Errorf("loading admin credential: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return "", ErrBadCredentials
	}

	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	return signed, nil
}

// Verify checks a session token's signature and expiry.
func (s *Service) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	return nil
}

// Middleware rejects requests without a valid Bearer session token.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.Verify(token) != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
