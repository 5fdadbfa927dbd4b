package auth

import (
	"os"
	"strings"
	"testing"
	"time"
)

// TestMain sets JWT_SECRET before any test runs; GenerateJWT panics without
// it. os.Setenv (not t.Setenv) because TestMain runs before t exists.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-key-32-chars-min!!!") //nolint:errcheck
	os.Exit(m.Run())
}

// ===== BCRYPT TESTS =====

func TestHashSecret(t *testing.T) {
	t.Parallel()

	secret := "svc-secret-9000!"
	hash, err := HashSecret(secret)
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	if hash == "" || hash == secret {
		t.Errorf("hash = %q, want non-empty bcrypt output", hash)
	}
	// Bcrypt hashes are 60 chars starting with $2a$/$2b$/$2y$.
	if len(hash) != 60 || !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash format is invalid: %s", hash)
	}
}

func TestVerifySecret_Correct(t *testing.T) {
	t.Parallel()

	secret := "svc-secret-9000!"
	hash, _ := HashSecret(secret)

	if !VerifySecret(hash, secret) {
		t.Error("VerifySecret should return true for the correct secret")
	}
}

func TestVerifySecret_Wrong(t *testing.T) {
	t.Parallel()

	hash, _ := HashSecret("svc-secret-9000!")

	if VerifySecret(hash, "different-secret") {
		t.Error("VerifySecret should return false for an incorrect secret")
	}
}

func TestVerifySecret_InvalidHash(t *testing.T) {
	t.Parallel()

	if VerifySecret("not-a-valid-hash", "anything") {
		t.Error("VerifySecret should return false for an invalid hash")
	}
}

func TestHashSecret_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()

	secret := "svc-secret-9000!"
	hash1, _ := HashSecret(secret)
	hash2, _ := HashSecret(secret)

	if hash1 == hash2 {
		t.Error("two hashes of the same secret should differ (salt)")
	}
	if !VerifySecret(hash1, secret) || !VerifySecret(hash2, secret) {
		t.Error("both hashes should verify the correct secret")
	}
}

// ===== JWT TESTS =====

func TestGenerateJWT(t *testing.T) {
	t.Parallel()

	token, err := GenerateJWT("svc-dashboard")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	if parts := strings.Count(token, "."); parts != 2 {
		t.Errorf("JWT should have 3 dot-separated parts, got %d separators", parts)
	}
}

func TestParseJWT_RoundTrip(t *testing.T) {
	t.Parallel()

	token, _ := GenerateJWT("svc-dashboard")

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed for valid token: %v", err)
	}
	if claims.ClientID != "svc-dashboard" {
		t.Errorf("client id = %q, want svc-dashboard", claims.ClientID)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		t.Error("JWT expiry missing or in the past")
	}
	if claims.IssuedAt == nil {
		t.Error("JWT missing IssuedAt claim")
	}
}

func TestParseJWT_InvalidToken(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "not-a-jwt", "invalid.token.here"} {
		if _, err := ParseJWT(token); err == nil {
			t.Errorf("ParseJWT(%q) should return an error", token)
		}
	}
}

func TestParseJWT_TamperedToken(t *testing.T) {
	t.Parallel()

	token, _ := GenerateJWT("svc-dashboard")
	tampered := token[:len(token)-2] + "xx"

	if _, err := ParseJWT(tampered); err == nil {
		t.Error("ParseJWT should reject a token with a broken signature")
	}
}

// ===== EXPIRY TESTS =====

func TestParseJWTExpiry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  time.Duration
	}{
		{"", DefaultJWTExpiryHours * time.Hour},
		{"not-a-number", DefaultJWTExpiryHours * time.Hour},
		{"48", 48 * time.Hour},
		{"1", time.Hour},
		{"0", 0},
	}
	for _, tc := range cases {
		if got := parseJWTExpiry(tc.input); got != tc.want {
			t.Errorf("parseJWTExpiry(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestJWT_CustomExpiry(t *testing.T) {
	// No t.Parallel(): t.Setenv mutates process env.
	t.Setenv("JWT_EXPIRY", "2")

	before := time.Now()
	token, err := GenerateJWT("svc-dashboard")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}

	diff := claims.ExpiresAt.Time.Sub(before.Add(2 * time.Hour)).Abs()
	if diff > 5*time.Second {
		t.Errorf("expiry should be ~2h from issue, diff is %v", diff)
	}
}
