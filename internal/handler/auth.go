package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/auth"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/service"
)

// AuthHandler serves signup, login and the session lookup.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the user (never its credential) and, when tokens are
// enabled, a bearer token.
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token,omitempty"`
}

type meResponse struct {
	User *model.User `json:"user"`
}

// HandleSignup: POST /api/auth/signup → 201 {user, token?}.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.service.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{User: res.User, Token: res.Token})
}

// HandleLogin: POST /api/auth/login → 200 {user, token?}.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: res.User, Token: res.Token})
}

// HandleMe: GET /api/auth/me?userId=. Without the query parameter the user
// id comes from a bearer token validated by auth.OptionalAuth.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID, _ = auth.UserIDFromContext(r.Context())
	}
	if userID == "" {
		writeError(w, apperror.Unauthorized("User ID required"))
		return
	}

	user, err := h.service.GetSession(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: user})
}
