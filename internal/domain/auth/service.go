// Package auth implements service-account authentication: seeding accounts
// from configuration, verifying client credentials, and issuing JWTs for the
// HTTP API.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/econpulse/econpulse/pkg/auth"
)

// ErrInvalidCredentials is returned by IssueToken for any credential failure.
// A single error for unknown client and wrong secret avoids leaking which
// client ids exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrClientExists is returned by CreateAccount for a duplicate client id.
var ErrClientExists = errors.New("client id already registered")

// TokenResult is returned after a successful credential exchange.
type TokenResult struct {
	Token    string
	ClientID string
}

// Service defines the service-account authentication operations.
type Service interface {
	CreateAccount(ctx context.Context, clientID, name, secret string) error
	EnsureAccount(ctx context.Context, clientID, name, secret string) error
	IssueToken(ctx context.Context, clientID, secret string) (*TokenResult, error)
}

// service is the concrete implementation backed by SQLite.
type service struct {
	db *sql.DB
}

// NewService creates a Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// CreateAccount registers a new service account. The secret is hashed with
// bcrypt before storage; plaintext is never stored.
func (s *service) CreateAccount(ctx context.Context, clientID, name, secret string) error {
	hash, err := pkgauth.HashSecret(secret)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO service_account (client_id, name, secret_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, clientID, name, hash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrClientExists
		}
		return fmt.Errorf("failed to create service account: %w", err)
	}
	return nil
}

// EnsureAccount creates the account if it does not exist yet. Used at
// startup to seed the configured client credentials; an existing account is
// left untouched so a restart never rotates its secret implicitly.
func (s *service) EnsureAccount(ctx context.Context, clientID, name, secret string) error {
	err := s.CreateAccount(ctx, clientID, name, secret)
	if errors.Is(err, ErrClientExists) {
		return nil
	}
	return err
}

// IssueToken verifies client credentials and returns a signed JWT.
// Any failure — unknown client or wrong secret — yields ErrInvalidCredentials.
func (s *service) IssueToken(ctx context.Context, clientID, secret string) (*TokenResult, error) {
	var secretHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT secret_hash FROM service_account WHERE client_id = ? LIMIT 1
	`, clientID).Scan(&secretHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// bcrypt comparison is constant-time.
	if !pkgauth.VerifySecret(secretHash, secret) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &TokenResult{Token: token, ClientID: clientID}, nil
}

// isUniqueViolation checks if an SQLite error is a UNIQUE constraint
// violation. SQLite surfaces this in the error message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
