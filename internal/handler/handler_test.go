package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/samewave/internal/auth"
	"github.com/sakif/samewave/internal/handler"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/repository/jsonfile"
	"github.com/sakif/samewave/internal/service"
)

type fakeSearcher struct {
	query string
	limit int
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) []model.Track {
	f.query, f.limit = query, limit
	if strings.TrimSpace(query) == "" {
		return []model.Track{}
	}
	return []model.Track{{ID: "3135556", Title: "Get Lucky", Artist: "Daft Punk"}}
}

type testAPI struct {
	router   http.Handler
	tokens   *auth.TokenService
	searcher *fakeSearcher
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := jsonfile.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(store, tokens, auth.NewPasswordServiceForTest(4), logger)
	require.NoError(t, authSvc.SeedDemoUsers(context.Background(), service.DemoUsers))

	threads := handler.NewThreadHandler(service.NewThreadService(store, logger), logger)
	suggestions := handler.NewSuggestionHandler(service.NewSuggestionService(store, logger), logger)
	authH := handler.NewAuthHandler(authSvc, logger)
	searcher := &fakeSearcher{}
	search := handler.NewSearchHandler(searcher, logger)

	r := chi.NewRouter()
	r.Use(auth.OptionalAuth(tokens))
	r.Route("/api", func(r chi.Router) {
		r.Get("/threads", threads.HandleList)
		r.Post("/threads", threads.HandleCreate)
		r.Get("/suggestions", suggestions.HandleList)
		r.Post("/suggestions", suggestions.HandleCreate)
		r.Patch("/suggestions/{id}/upvote", suggestions.HandleUpvote)
		r.Post("/auth/signup", authH.HandleSignup)
		r.Post("/auth/login", authH.HandleLogin)
		r.Get("/auth/me", authH.HandleMe)
		r.Get("/health", handler.HandleHealth)
		r.Get("/search", search.HandleSearch)
	})

	return &testAPI{router: r, tokens: tokens, searcher: searcher}
}

func (a *testAPI) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func TestThreadsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	t.Run("empty list is an array", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/threads", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
	})

	t.Run("create then list newest first", func(t *testing.T) {
		for _, seed := range []string{"A", "B", "C"} {
			rr := api.do(t, http.MethodPost, "/api/threads",
				`{"seedTrackId":"`+seed+`","tags":["Chill"],"createdBy":"@ChillWave7","trackData":{"title":"Song `+seed+`"}}`)
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
			th := decode[model.Thread](t, rr)
			assert.True(t, strings.HasPrefix(th.ID, model.ThreadIDPrefix))
		}

		list := decode[[]model.Thread](t, api.do(t, http.MethodGet, "/api/threads", ""))
		require.Len(t, list, 3)
		assert.Equal(t, []string{"C", "B", "A"}, []string{list[0].SeedTrackID, list[1].SeedTrackID, list[2].SeedTrackID})
	})

	t.Run("missing seed is 400", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/threads", `{"createdBy":"@x"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Code)
		assert.Equal(t, "seedTrackId is required", body.Error)
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/threads", `{"seedTrackId":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSuggestionsAndUpvote(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/suggestions",
		`{"threadId":"thr_dangling","trackId":"916424","reason":"same loop","createdBy":"@x"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[model.Suggestion](t, rr)
	assert.Zero(t, created.Votes)

	for want := 1; want <= 3; want++ {
		rr := api.do(t, http.MethodPatch, "/api/suggestions/"+created.ID+"/upvote", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, want, decode[model.Suggestion](t, rr).Votes)
	}

	rr = api.do(t, http.MethodPatch, "/api/suggestions/s_missing/upvote", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rr).Code)

	list := decode[[]model.Suggestion](t, api.do(t, http.MethodGet, "/api/suggestions", ""))
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Votes)
}

func TestSignupLoginMe(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/api/auth/signup",
		`{"username":"vinylhead","email":"vinyl@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "password")
	signed := decode[handler.AuthResponse](t, rr)
	assert.NotEmpty(t, signed.Token)

	t.Run("duplicate email is 400 conflict", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/signup",
			`{"username":"other","email":"vinyl@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "conflict", decode[handler.ErrorResponse](t, rr).Code)
	})

	t.Run("missing field is 400", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/signup", `{"username":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decode[handler.ErrorResponse](t, rr).Code)
	})

	t.Run("login demo user", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/login", `{"email":"demo@samewave.com","password":"demo123"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		res := decode[handler.AuthResponse](t, rr)
		assert.Equal(t, "user_demo1", res.User.ID)
		assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=demo", res.User.AvatarURL)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/auth/login", `{"email":"demo@samewave.com","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid email or password", decode[handler.ErrorResponse](t, rr).Error)
	})

	t.Run("me by query", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/me?userId="+signed.User.ID, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			User model.User `json:"user"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "vinylhead", body.User.Username)
	})

	t.Run("me by bearer token", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/me", "", "Authorization", "Bearer "+signed.Token)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("me without identity is 401", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/me", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("me unknown id is 404", func(t *testing.T) {
		rr := api.do(t, http.MethodGet, "/api/auth/me?userId=user_nobody", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "OK", body["status"])
	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)
}

func TestSearchProxy(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/search?q=get+lucky&limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	tracks := decode[[]model.Track](t, rr)
	require.Len(t, tracks, 1)
	assert.Equal(t, "get lucky", api.searcher.query)
	assert.Equal(t, 5, api.searcher.limit)

	rr = api.do(t, http.MethodGet, "/api/search?q=x&limit=abc", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, api.searcher.limit, "bad limit falls back to the gateway default")

	rr = api.do(t, http.MethodGet, "/api/search", "")
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}
