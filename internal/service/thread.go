// Package service holds the entity store's business rules.
//
// Handlers parse HTTP and call a service; services validate, enforce rules
// and call a repository interface. Nothing here knows about HTTP status codes
// or about which storage backend is plugged in:
//
//	Handler (HTTP) → Service (validation, logging) → Repository (jsonfile | sqlite)
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/repository"
)

// ThreadService creates and lists threads.
type ThreadService struct {
	repo   repository.ThreadRepository
	logger *slog.Logger
}

func NewThreadService(repo repository.ThreadRepository, logger *slog.Logger) *ThreadService {
	return &ThreadService{
		repo:   repo,
		logger: logger,
	}
}

// List returns every thread, newest first.
func (s *ThreadService) List(ctx context.Context) ([]model.Thread, error) {
	threads, err := s.repo.ListThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	return threads, nil
}

// Create validates the payload and inserts the thread at the head of the
// collection. Invalid payloads fail with apperror.ErrValidation.
func (s *ThreadService) Create(ctx context.Context, in model.NewThread) (*model.Thread, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	thread := in.Thread()
	if err := s.repo.CreateThread(ctx, &thread); err != nil {
		s.logger.Error("failed to create thread",
			slog.String("seedTrackId", in.SeedTrackID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating thread: %w", err)
	}

	s.logger.Info("thread created",
		slog.String("id", thread.ID),
		slog.String("seedTrackId", thread.SeedTrackID),
		slog.String("createdBy", thread.CreatedBy),
	)
	return &thread, nil
}
