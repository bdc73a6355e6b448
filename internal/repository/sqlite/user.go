package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
)

const userColumns = `id, username, email, password_hash, avatar_url, created_at`

// CreateUser runs the uniqueness checks and the insert in one transaction so
// the caller learns which field collided. The UNIQUE constraints back it up.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = model.NewUserID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user insert: %w", err)
	}
	defer tx.Rollback()

	checks := []struct {
		field, query, value string
	}{
		{"email", `SELECT COUNT(*) FROM users WHERE email = ?`, user.Email},
		{"username", `SELECT COUNT(*) FROM users WHERE username = ?`, user.Username},
		{"id", `SELECT COUNT(*) FROM users WHERE id = ?`, user.ID},
	}
	for _, c := range checks {
		var n int
		if err := tx.QueryRowContext(ctx, c.query, c.value).Scan(&n); err != nil {
			return fmt.Errorf("sqlite: checking user %s: %w", c.field, err)
		}
		if n > 0 {
			return apperror.Conflict("user", c.field, c.value)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user %s: %w", user.ID, err)
	}
	return nil
}

// GetUserByID returns apperror.ErrNotFound for an unknown id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetUserByEmail matches case-insensitively (the column is COLLATE NOCASE).
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, "email", email)
}

// column is one of two constants above, never user input.
func (db *DB) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`,
		value,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", value)
		}
		return nil, fmt.Errorf("sqlite: getting user by %s: %w", column, err)
	}

	return &u, nil
}
