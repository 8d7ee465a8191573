package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is package-private so no other package can read or shadow the
// values stored under it.
type contextKey string

const userIDKey contextKey = "userID"

// unauthorizedBody matches the error envelope written by the handler
// package, so clients see one 401 shape regardless of which layer rejected
// the request.
const unauthorizedBody = `{"error":"unauthorized","message":"valid authentication required","success":false}`

// TokenValidator is the slice of TokenService the middleware needs.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stops the chain. On success the user id is stored in the request context
// for UserIDFromContext.
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := extractUserID(r, tokens)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="crackbano"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(unauthorizedBody))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. Handler tests use it to
// skip the token round trip.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or ("", false) for an
// anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme match is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func extractUserID(r *http.Request, tokens TokenValidator) (string, bool) {
	token, ok := BearerToken(r)
	if !ok {
		return "", false
	}
	userID, err := tokens.Validate(token)
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}
