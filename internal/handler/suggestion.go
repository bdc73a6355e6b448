package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/service"
)

// SuggestionHandler serves /api/suggestions.
type SuggestionHandler struct {
	service *service.SuggestionService
	logger  *slog.Logger
}

func NewSuggestionHandler(svc *service.SuggestionService, logger *slog.Logger) *SuggestionHandler {
	return &SuggestionHandler{service: svc, logger: logger}
}

// HandleList: GET /api/suggestions, newest first. Clients rank.
func (h *SuggestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// HandleCreate: POST /api/suggestions.
func (h *SuggestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NewSuggestion
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid suggestion JSON")
		writeError(w, err)
		return
	}

	suggestion, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, suggestion)
}

// HandleUpvote: PATCH /api/suggestions/{id}/upvote. No body; each call adds
// one vote.
func (h *SuggestionHandler) HandleUpvote(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.service.Upvote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
