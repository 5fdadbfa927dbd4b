// Tests for the token endpoint against a real in-memory SQLite DB.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	domainauth "github.com/econpulse/econpulse/internal/domain/auth"
	"github.com/econpulse/econpulse/internal/infra/sqlite"
	"github.com/econpulse/econpulse/pkg/auth"
)

// TestMain sets package-level environment variables needed by auth tests.
// JWT_SECRET must be set before GenerateJWT is called (it panics otherwise).
// Using TestMain (instead of t.Setenv) allows t.Parallel() across all tests.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

// ===== TEST HELPERS =====

// mustOpenAuthDB opens in-memory SQLite with all migrations applied.
func mustOpenAuthDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp error = %v", err)
	}
	return db
}

// newAuthHandler creates a handler over a fresh DB seeded with one account.
func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()

	db := mustOpenAuthDB(t)
	svc := domainauth.NewService(db)
	if err := svc.CreateAccount(context.Background(), "svc-dashboard", "Dashboard", "s3cret"); err != nil {
		t.Fatalf("CreateAccount error = %v", err)
	}
	return NewAuthHandler(svc)
}

func postToken(t *testing.T, h *AuthHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.Token(rec, req)
	return rec
}

// ===== TESTS =====

func TestToken_ValidCredentials(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t)

	rec := postToken(t, h, TokenRequest{ClientID: "svc-dashboard", ClientSecret: "s3cret"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ClientID != "svc-dashboard" {
		t.Errorf("client_id = %q, want %q", resp.ClientID, "svc-dashboard")
	}

	claims, err := auth.ParseJWT(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.ClientID != "svc-dashboard" {
		t.Errorf("token client_id = %q, want %q", claims.ClientID, "svc-dashboard")
	}
}

func TestToken_WrongSecret(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t)

	rec := postToken(t, h, TokenRequest{ClientID: "svc-dashboard", ClientSecret: "wrong"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestToken_UnknownClient(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t)

	rec := postToken(t, h, TokenRequest{ClientID: "nobody", ClientSecret: "s3cret"})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestToken_MissingFields(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t)

	rec := postToken(t, h, TokenRequest{ClientID: "svc-dashboard"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestToken_InvalidJSON(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Token(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
