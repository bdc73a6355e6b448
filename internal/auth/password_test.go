package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestHash_LooksLikeBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("demo123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_IsSalted(t *testing.T) {
	ps := newTestPasswordService()

	hash1, _ := ps.Hash("test123")
	hash2, _ := ps.Hash("test123")
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_LengthLimit(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Errorf("Hash() rejected a %d-byte password: %v", MaxPasswordBytes, err)
	}
	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordBytes+1)); err == nil {
		t.Error("Hash() accepted a password over the bcrypt limit")
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("demo123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name      string
		hash      string
		plaintext string
		wantErr   error
		wantAny   bool
	}{
		{name: "correct password", hash: hash, plaintext: "demo123"},
		{name: "wrong password", hash: hash, plaintext: "demo124", wantErr: ErrPasswordMismatch},
		{name: "empty password", hash: hash, plaintext: "", wantErr: ErrPasswordMismatch},
		{name: "garbage hash", hash: "not-a-hash", plaintext: "demo123", wantAny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ps.Verify(tt.hash, tt.plaintext)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAny:
				if err == nil {
					t.Error("Verify() should fail")
				}
			default:
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
			}
		})
	}
}
