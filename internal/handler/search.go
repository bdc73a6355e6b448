package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/samewave/internal/catalog"
)

// SearchHandler proxies track search to the catalog gateway, so credentials
// for token-based catalogs stay on the server.
type SearchHandler struct {
	searcher catalog.Searcher
	logger   *slog.Logger
}

func NewSearchHandler(searcher catalog.Searcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// HandleSearch: GET /api/search?q=&limit=. Always 200; an unusable limit
// falls back to the default and upstream trouble yields [].
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}

	tracks := h.searcher.Search(r.Context(), query, limit)
	writeJSON(w, http.StatusOK, tracks)
}
