package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
)

func (s *Store) CreateSuggestion(ctx context.Context, suggestion *model.Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = model.NewSuggestionID()
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}
	if suggestion.Tags == nil {
		suggestion.Tags = []string{}
	}
	suggestion.Votes = 0

	err := s.suggestions.do(ctx, func(items []model.Suggestion) ([]model.Suggestion, bool, error) {
		return prepend(items, *suggestion), true, nil
	})
	if err != nil {
		return fmt.Errorf("jsonfile: creating suggestion: %w", err)
	}
	return nil
}

func (s *Store) ListSuggestions(ctx context.Context) ([]model.Suggestion, error) {
	items, err := s.suggestions.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: listing suggestions: %w", err)
	}
	return items, nil
}

func (s *Store) UpvoteSuggestion(ctx context.Context, id string) (*model.Suggestion, error) {
	var updated model.Suggestion

	err := s.suggestions.do(ctx, func(items []model.Suggestion) ([]model.Suggestion, bool, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Votes++
				updated = items[i]
				return items, true, nil
			}
		}
		return nil, false, apperror.NotFound("suggestion", id)
	})
	if err != nil {
		return nil, fmt.Errorf("jsonfile: upvoting suggestion %s: %w", id, err)
	}
	return &updated, nil
}
