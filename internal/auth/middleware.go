package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errNoToken = errors.New("auth: no bearer token")

// contextKey is unexported so no other package can read or shadow the value.
type contextKey string

const userIDKey contextKey = "userID"

// OptionalAuth reads "Authorization: Bearer <token>" and, when the token is
// valid, stores the user id in the request context. Requests without a
// valid token continue anonymously. A nil TokenService disables it.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens != nil {
				if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errNoToken
	}
	return tokens.Validate(strings.TrimSpace(token))
}
