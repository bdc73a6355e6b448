package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/localstore"
	"github.com/sakif/samewave/internal/model"
)

type fakeAccounts struct {
	users map[string]*model.User
	err   error
}

func (f *fakeAccounts) Me(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperror.New(apperror.ErrNotFound, "User not found")
}

var demo = &model.User{ID: "user_demo1", Username: "demo", Email: "demo@samewave.com"}

func newTestSession(t *testing.T, accounts Accounts) (*Session, localstore.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := localstore.NewFileStore(filepath.Join(t.TempDir(), "state.json"), logger)
	require.NoError(t, err)
	return NewSession(store, accounts, logger), store
}

var pseudonymPattern = regexp.MustCompile(`^@(Cool|Awesome|Epic|Chill|Smooth|Dreamy|Vibey|Fresh)(Listener|Vibes|Music|Beat|Sound|Wave|Tune|Melody)\d{1,2}$`)

func TestPseudonymIsGeneratedOnceAndPersisted(t *testing.T) {
	s, store := newTestSession(t, &fakeAccounts{})
	ctx := context.Background()

	first, err := s.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Regexp(t, pseudonymPattern, first)

	second, err := s.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, ok, _ := store.Get(ctx, localstore.KeyUsername)
	assert.True(t, ok)
	assert.Equal(t, first, stored)
}

func TestPseudonymUsesInjectedRandomness(t *testing.T) {
	s, _ := newTestSession(t, &fakeAccounts{})
	values := []int{3, 5, 42}
	s.intN = func(int) int {
		v := values[0]
		values = values[1:]
		return v
	}

	got, err := s.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "@ChillWave42", got)
}

func TestLoginLogout(t *testing.T) {
	s, store := newTestSession(t, &fakeAccounts{})
	ctx := context.Background()
	_, err := s.CurrentIdentity(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Login(ctx, demo))
	assert.Equal(t, Authenticated, s.State())
	got, err := s.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "@demo", got)

	id, ok, _ := store.Get(ctx, localstore.KeyUserID)
	assert.True(t, ok)
	assert.Equal(t, "user_demo1", id)

	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, Anonymous, s.State())
	_, ok, _ = store.Get(ctx, localstore.KeyUsername)
	assert.False(t, ok, "pseudonym is cleared on logout")
	_, ok, _ = store.Get(ctx, localstore.KeyUserID)
	assert.False(t, ok)

	fresh, err := s.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.Regexp(t, pseudonymPattern, fresh)
}

func TestLoginRejectsEmptyUser(t *testing.T) {
	s, _ := newTestSession(t, &fakeAccounts{})
	err := s.Login(context.Background(), &model.User{})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name       string
		accounts   *fakeAccounts
		wantState  State
		wantIDKept bool
	}{
		{"known user", &fakeAccounts{users: map[string]*model.User{"user_demo1": demo}}, Authenticated, true},
		{"unknown user", &fakeAccounts{}, Anonymous, false},
		{"unauthorized", &fakeAccounts{err: apperror.Unauthorized("token expired")}, Anonymous, false},
		{"store down", &fakeAccounts{err: apperror.Unavailable("entity store", nil)}, Anonymous, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store := newTestSession(t, tt.accounts)
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, localstore.KeyUserID, "user_demo1"))

			require.NoError(t, s.Restore(ctx))
			assert.Equal(t, tt.wantState, s.State())

			_, ok, _ := store.Get(ctx, localstore.KeyUserID)
			assert.Equal(t, tt.wantIDKept, ok)
		})
	}
}

func TestRestoreWithoutStoredID(t *testing.T) {
	s, _ := newTestSession(t, &fakeAccounts{err: errors.New("must not be called")})
	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, Anonymous, s.State())
}
