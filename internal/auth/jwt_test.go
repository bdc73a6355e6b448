package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if ts.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", ts.ttl, DefaultTokenTTL)
	}
}

// =========================================================================
// GENERATE / VALIDATE
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user_demo1")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("token has %d dots, want 2 (header.payload.signature)", got)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user_demo1")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "user_demo1" {
		t.Errorf("Validate() userID = %q, want %q", got, "user_demo1")
	}
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	other, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	good, _ := ts.Generate("user_demo1")
	expired, _ := ts.GenerateWithDuration("user_demo1", -time.Second)
	foreign, _ := other.Generate("user_demo1")

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"signed with another secret", foreign},
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Validate(tt.token); err == nil {
				t.Errorf("Validate(%s) should fail", tt.name)
			}
		})
	}
}
