package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/repository"
)

// SuggestionService creates, lists and upvotes suggestions.
type SuggestionService struct {
	repo   repository.SuggestionRepository
	logger *slog.Logger
}

func NewSuggestionService(repo repository.SuggestionRepository, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		repo:   repo,
		logger: logger,
	}
}

// List returns every suggestion, newest first. Ranking is a presentation
// concern and happens in the caller.
func (s *SuggestionService) List(ctx context.Context) ([]model.Suggestion, error) {
	suggestions, err := s.repo.ListSuggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	return suggestions, nil
}

// Create validates the payload and stores the suggestion with zero votes.
// The thread id is not checked against existing threads.
func (s *SuggestionService) Create(ctx context.Context, in model.NewSuggestion) (*model.Suggestion, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	suggestion := in.Suggestion()
	if err := s.repo.CreateSuggestion(ctx, &suggestion); err != nil {
		s.logger.Error("failed to create suggestion",
			slog.String("threadId", in.ThreadID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating suggestion: %w", err)
	}

	s.logger.Info("suggestion created",
		slog.String("id", suggestion.ID),
		slog.String("threadId", suggestion.ThreadID),
		slog.String("trackId", suggestion.TrackID),
		slog.String("createdBy", suggestion.CreatedBy),
	)
	return &suggestion, nil
}

// Upvote adds exactly one vote. Any caller may upvote any number of times.
func (s *SuggestionService) Upvote(ctx context.Context, id string) (*model.Suggestion, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("suggestion", id)
	}

	suggestion, err := s.repo.UpvoteSuggestion(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to upvote suggestion",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("upvoting suggestion: %w", err)
	}

	s.logger.Info("suggestion upvoted",
		slog.String("id", suggestion.ID),
		slog.Int("votes", suggestion.Votes),
	)
	return suggestion, nil
}
