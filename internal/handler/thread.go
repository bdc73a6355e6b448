package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/service"
)

// ThreadHandler serves /api/threads.
type ThreadHandler struct {
	service *service.ThreadService
	logger  *slog.Logger
}

func NewThreadHandler(svc *service.ThreadService, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{service: svc, logger: logger}
}

// HandleList: GET /api/threads, newest first.
func (h *ThreadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	threads, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

// HandleCreate: POST /api/threads with {seedTrackId, tags, createdBy, trackData}.
func (h *ThreadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NewThread
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("invalid thread JSON")
		writeError(w, err)
		return
	}

	thread, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, thread)
}
