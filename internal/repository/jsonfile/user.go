package jsonfile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
)

// userRecord is the on-disk shape of a user. model.User hides the
// credential from JSON, so the document needs its own field for it.
type userRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	Avatar    string    `json:"avatar"`
}

func toRecord(u *model.User) userRecord {
	return userRecord{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
		Avatar:    u.AvatarURL,
	}
}

func (r userRecord) user() *model.User {
	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
		AvatarURL:    r.Avatar,
	}
}

// CreateUser checks uniqueness inside the same queued cycle that appends the
// record, so two signups with one email cannot both pass the check.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = model.NewUserID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := s.users.do(ctx, func(items []userRecord) ([]userRecord, bool, error) {
		for _, existing := range items {
			if strings.EqualFold(existing.Email, user.Email) {
				return nil, false, apperror.Conflict("user", "email", user.Email)
			}
			if strings.EqualFold(existing.Username, user.Username) {
				return nil, false, apperror.Conflict("user", "username", user.Username)
			}
			if existing.ID == user.ID {
				return nil, false, apperror.Conflict("user", "id", user.ID)
			}
		}
		return append(items, toRecord(user)), true, nil
	})
	if err != nil {
		return fmt.Errorf("jsonfile: creating user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, "id", id, func(r userRecord) bool { return r.ID == id })
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, "email", email, func(r userRecord) bool {
		return strings.EqualFold(r.Email, email)
	})
}

func (s *Store) findUser(ctx context.Context, field, value string, match func(userRecord) bool) (*model.User, error) {
	items, err := s.users.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: looking up user by %s: %w", field, err)
	}
	for _, r := range items {
		if match(r) {
			return r.user(), nil
		}
	}
	return nil, apperror.NotFound("user", value)
}
