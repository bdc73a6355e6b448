// Package repository declares the storage contracts of the entity store.
//
// Two backends implement every interface here: jsonfile (one pretty-printed
// document per collection, the on-disk layout clients already know) and
// sqlite (embedded, transactional). Services depend on these interfaces only.
package repository

import (
	"context"

	"github.com/sakif/samewave/internal/model"
)

// ThreadRepository stores threads newest first.
type ThreadRepository interface {
	// CreateThread assigns ID and CreatedAt when unset and inserts at the head.
	CreateThread(ctx context.Context, thread *model.Thread) error
	ListThreads(ctx context.Context) ([]model.Thread, error)
}

// SuggestionRepository stores suggestions newest first.
type SuggestionRepository interface {
	// CreateSuggestion assigns ID and CreatedAt when unset, resets Votes to 0
	// and inserts at the head.
	CreateSuggestion(ctx context.Context, suggestion *model.Suggestion) error
	ListSuggestions(ctx context.Context) ([]model.Suggestion, error)
	// UpvoteSuggestion adds exactly one vote and returns the updated record,
	// or apperror.ErrNotFound.
	UpvoteSuggestion(ctx context.Context, id string) (*model.Suggestion, error)
}

// UserRepository stores accounts. Username and email are unique.
type UserRepository interface {
	// CreateUser returns apperror.ErrConflict when the username or email is taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Store is a complete backend.
type Store interface {
	ThreadRepository
	SuggestionRepository
	UserRepository
	Close() error
}
