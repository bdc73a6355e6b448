package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/auth"
)

// newTestAuthService wires an AuthService with a fake repository. Cost 4 is
// the bcrypt minimum and keeps the tests fast.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	ps := auth.NewPasswordServiceForTest(4)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, ts, ps, logger)
}

// =========================================================================
// Signup
// =========================================================================

func TestSignup_NewUser(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserRepo{})

	res, err := svc.Signup(context.Background(), "vinylhead", "Vinyl@Example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if res.User.ID == "" {
		t.Error("User.ID should be set")
	}
	if res.User.Email != "vinyl@example.com" {
		t.Errorf("Email = %q, want lower-cased", res.User.Email)
	}
	if !strings.HasSuffix(res.User.AvatarURL, "seed=vinylhead") {
		t.Errorf("AvatarURL = %q", res.User.AvatarURL)
	}
	if res.Token == "" {
		t.Error("Token should be issued when a token service is configured")
	}

	data, _ := json.Marshal(res.User)
	if strings.Contains(string(data), "password") || strings.Contains(string(data), res.User.PasswordHash) {
		t.Errorf("user JSON leaks the credential: %s", data)
	}
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"missing username", "", "a@b.c", "secret1"},
		{"missing email", "someone", "", "secret1"},
		{"missing password", "someone", "a@b.c", ""},
		{"short username", "ab", "a@b.c", "secret1"},
		{"username with space", "two words", "a@b.c", "secret1"},
		{"email without at", "someone", "not-an-email", "secret1"},
		{"short password", "someone", "a@b.c", "12345"},
		{"password over bcrypt limit", "someone", "a@b.c", strings.Repeat("x", 73)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUserRepo{}
			svc := newTestAuthService(t, repo)

			_, err := svc.Signup(context.Background(), tt.username, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Signup() error = %v, want ErrValidation", err)
			}
			if len(repo.users) != 0 {
				t.Error("no user should be stored")
			}
		})
	}
}

func TestSignup_Duplicate(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserRepo{})
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "vinylhead", "vinyl@example.com", "secret1"); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}

	_, err := svc.Signup(ctx, "other", "VINYL@example.com", "secret1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate email: error = %v, want ErrConflict", err)
	}
	_, err = svc.Signup(ctx, "vinylhead", "other@example.com", "secret1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate username: error = %v, want ErrConflict", err)
	}
}

func TestSignup_WithoutTokenService(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{}, nil, auth.NewPasswordServiceForTest(4), discardLogger())

	res, err := svc.Signup(context.Background(), "vinylhead", "vinyl@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if res.Token != "" {
		t.Errorf("Token = %q, want empty", res.Token)
	}
}

// =========================================================================
// Login
// =========================================================================

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserRepo{})
	ctx := context.Background()
	signed, err := svc.Signup(ctx, "vinylhead", "vinyl@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct credentials", "vinyl@example.com", "secret1", nil},
		{"email is case-insensitive", "VINYL@example.com", "secret1", nil},
		{"wrong password", "vinyl@example.com", "wrong-one", apperror.ErrUnauthorized},
		{"unknown email", "nobody@example.com", "secret1", apperror.ErrUnauthorized},
		{"missing password", "vinyl@example.com", "", apperror.ErrValidation},
		{"missing email", "", "secret1", apperror.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if res.User.ID != signed.User.ID {
				t.Errorf("User.ID = %q, want %q", res.User.ID, signed.User.ID)
			}
		})
	}
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserRepo{})
	ctx := context.Background()
	if _, err := svc.Signup(ctx, "vinylhead", "vinyl@example.com", "secret1"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	res, err := svc.Login(ctx, "vinyl@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	userID, err := svc.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if userID != res.User.ID {
		t.Errorf("token subject = %q, want %q", userID, res.User.ID)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserRepo{})

	_, err := svc.ValidateToken("not.a.jwt")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("ValidateToken() error = %v, want ErrUnauthorized", err)
	}
}

// =========================================================================
// GetSession
// =========================================================================

func TestGetSession(t *testing.T) {
	svc := newTestAuthService(t, &fakeUserRepo{})
	ctx := context.Background()
	signed, err := svc.Signup(ctx, "vinylhead", "vinyl@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	got, err := svc.GetSession(ctx, signed.User.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Username != "vinylhead" {
		t.Errorf("Username = %q", got.Username)
	}

	if _, err := svc.GetSession(ctx, ""); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("GetSession(\"\") error = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.GetSession(ctx, "user_nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSession(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestGetSession_RepositoryError(t *testing.T) {
	repo := &fakeUserRepo{getByIDErr: errors.New("database is on fire")}
	svc := newTestAuthService(t, repo)

	if _, err := svc.GetSession(context.Background(), "user_1"); err == nil {
		t.Fatal("GetSession() should propagate repository errors")
	}
}

// =========================================================================
// SeedDemoUsers
// =========================================================================

func TestSeedDemoUsers_Idempotent(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newTestAuthService(t, repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.SeedDemoUsers(ctx, DemoUsers); err != nil {
			t.Fatalf("SeedDemoUsers() pass %d error = %v", i, err)
		}
	}
	if len(repo.users) != len(DemoUsers) {
		t.Fatalf("users = %d, want %d", len(repo.users), len(DemoUsers))
	}

	res, err := svc.Login(ctx, "demo@samewave.com", "demo123")
	if err != nil {
		t.Fatalf("Login(demo) error = %v", err)
	}
	if res.User.ID != "user_demo1" {
		t.Errorf("demo ID = %q, want user_demo1", res.User.ID)
	}
}
