// Package identity decides who the client is acting as: a registered
// account after login, otherwise a generated pseudonym kept in local state.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/localstore"
	"github.com/sakif/samewave/internal/model"
)

var (
	adjectives = []string{"Cool", "Awesome", "Epic", "Chill", "Smooth", "Dreamy", "Vibey", "Fresh"}
	nouns      = []string{"Listener", "Vibes", "Music", "Beat", "Sound", "Wave", "Tune", "Melody"}
)

type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Accounts resolves a stored user id. apiclient.Client implements it.
type Accounts interface {
	Me(ctx context.Context, userID string) (*model.User, error)
}

// Session is the client's identity for one process.
type Session struct {
	store    localstore.Store
	accounts Accounts
	logger   *slog.Logger
	intN     func(n int) int

	mu   sync.Mutex
	user *model.User
}

func NewSession(store localstore.Store, accounts Accounts, logger *slog.Logger) *Session {
	return &Session{
		store:    store,
		accounts: accounts,
		logger:   logger,
		intN:     rand.IntN,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		return Authenticated
	}
	return Anonymous
}

// User is the logged-in account, or nil.
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// CurrentIdentity is the createdBy value for new records. Anonymous clients
// get a pseudonym that is generated once and then reused.
func (s *Session) CurrentIdentity(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return s.user.Handle(), nil
	}

	name, ok, err := s.store.Get(ctx, localstore.KeyUsername)
	if err != nil {
		return "", fmt.Errorf("identity: reading pseudonym: %w", err)
	}
	if ok && name != "" {
		return name, nil
	}

	name = s.pseudonym()
	if err := s.store.Set(ctx, localstore.KeyUsername, name); err != nil {
		return "", fmt.Errorf("identity: storing pseudonym: %w", err)
	}
	s.logger.Debug("pseudonym generated", slog.String("name", name))
	return name, nil
}

func (s *Session) pseudonym() string {
	return fmt.Sprintf("@%s%s%d",
		adjectives[s.intN(len(adjectives))],
		nouns[s.intN(len(nouns))],
		s.intN(100),
	)
}

// Login makes user the current identity and remembers it across runs.
func (s *Session) Login(ctx context.Context, user *model.User) error {
	if user == nil || user.ID == "" {
		return apperror.ValidationFailed("user", "user is required")
	}
	if err := s.store.Set(ctx, localstore.KeyUserID, user.ID); err != nil {
		return fmt.Errorf("identity: storing user id: %w", err)
	}

	s.mu.Lock()
	u := *user
	s.user = &u
	s.mu.Unlock()

	s.logger.Info("logged in", slog.String("userID", user.ID))
	return nil
}

// Logout forgets the account and the pseudonym.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, localstore.KeyUserID, localstore.KeyUsername); err != nil {
		return fmt.Errorf("identity: clearing session: %w", err)
	}
	return nil
}

// Restore resumes a stored login. A stored id the store no longer knows is
// dropped; an unreachable store keeps it for the next run.
func (s *Session) Restore(ctx context.Context) error {
	userID, ok, err := s.store.Get(ctx, localstore.KeyUserID)
	if err != nil {
		return fmt.Errorf("identity: reading user id: %w", err)
	}
	if !ok || userID == "" {
		return nil
	}

	user, err := s.accounts.Me(ctx, userID)
	switch {
	case err == nil:
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
		return nil
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrUnauthorized):
		s.logger.Info("stored login no longer valid", slog.String("userID", userID))
		if err := s.store.Delete(ctx, localstore.KeyUserID); err != nil {
			return fmt.Errorf("identity: dropping user id: %w", err)
		}
		return nil
	default:
		s.logger.Warn("cannot restore login, continuing anonymously",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil
	}
}
