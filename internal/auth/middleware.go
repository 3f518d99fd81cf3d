package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/gradlink/internal/session"
)

type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth rejects requests without a valid "Token <jwt>" header with
// 401, and otherwise stores the caller's user ID in the request context.
//
// The 401 body has the same {"error","message"} shape every other
// devserver error uses, so the client's error mapping treats it alike.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"Authentication credentials were not provided."}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth identifies the caller when a valid header is present and
// lets anonymous requests through otherwise. Used on the public lists,
// where a logged-in viewer gets per-viewer fields like is_registered.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the authenticated user's ID, or (0, false) for
// an anonymous request.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id != 0
}

// ContextWithUserID is for handler tests that skip the middleware.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// extractUserID parses "Authorization: Token <jwt>". The scheme is
// case-sensitive and separated by exactly one space, which is also exactly
// what Authorize writes.
func extractUserID(r *http.Request, tokens *TokenService) (int64, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), session.TokenType+" ")
	if !ok || raw == "" {
		return 0, errMissingToken
	}
	return tokens.Validate(raw)
}

var errMissingToken = errors.New("auth: missing Token credentials")
