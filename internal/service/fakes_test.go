package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
)

// In-memory repositories. Each exposes an error field to simulate a failing
// backend.

type fakeThreadRepo struct {
	mu        sync.Mutex
	threads   []model.Thread
	createErr error
	listErr   error
}

func (f *fakeThreadRepo) CreateThread(_ context.Context, th *model.Thread) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	th.ID = fmt.Sprintf("thr_%d", len(f.threads)+1)
	th.CreatedAt = time.Now()
	f.threads = append([]model.Thread{*th}, f.threads...)
	return nil
}

func (f *fakeThreadRepo) ListThreads(context.Context) ([]model.Thread, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Thread{}, f.threads...), nil
}

type fakeSuggestionRepo struct {
	mu          sync.Mutex
	suggestions []model.Suggestion
	createErr   error
	upvoteErr   error
}

func (f *fakeSuggestionRepo) CreateSuggestion(_ context.Context, sg *model.Suggestion) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sg.ID = fmt.Sprintf("s_%d", len(f.suggestions)+1)
	sg.CreatedAt = time.Now()
	sg.Votes = 0
	f.suggestions = append([]model.Suggestion{*sg}, f.suggestions...)
	return nil
}

func (f *fakeSuggestionRepo) ListSuggestions(context.Context) ([]model.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Suggestion{}, f.suggestions...), nil
}

func (f *fakeSuggestionRepo) UpvoteSuggestion(_ context.Context, id string) (*model.Suggestion, error) {
	if f.upvoteErr != nil {
		return nil, f.upvoteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.suggestions {
		if f.suggestions[i].ID == id {
			f.suggestions[i].Votes++
			out := f.suggestions[i]
			return &out, nil
		}
	}
	return nil, apperror.NotFound("suggestion", id)
}

type fakeUserRepo struct {
	mu         sync.Mutex
	users      []model.User
	createErr  error
	getByIDErr error
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperror.Conflict("user", "email", u.Email)
		}
		if strings.EqualFold(existing.Username, u.Username) {
			return apperror.Conflict("user", "username", u.Username)
		}
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user_%d", len(f.users)+1)
	}
	u.CreatedAt = time.Now()
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
