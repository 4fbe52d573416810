package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/patinho/quack-board/internal/repository"
)

var errMissingToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package.
// A package-private key type means only this package can read or write the
// identity value — no other package can collide with or shadow it.
type contextKey string

const userIDKey contextKey = "userID"

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or not a bearer credential.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// RequireAuth enforces authentication on protected routes.
//
// It validates the bearer token AND resolves the encoded user id against the
// identity store: a syntactically valid token whose user has since vanished
// is still a 401. On success the user id is stored in the request context
// for downstream ownership checks.
func RequireAuth(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveUser(r, tokens, users)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the caller's identity if a valid token is present,
// but never blocks the request. Any failure — missing header, bad signature,
// expiry, vanished user — degrades to anonymous.
//
// Used on routes that behave differently for authenticated callers without
// requiring login (e.g. vote attribution).
func OptionalAuth(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := resolveUser(r, tokens, users); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// resolveUser validates the bearer token and confirms the user still exists.
// Shared by RequireAuth and OptionalAuth.
func resolveUser(r *http.Request, tokens *TokenService, users repository.UserRepository) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", errMissingToken
	}

	userID, err := tokens.Validate(token)
	if err != nil {
		return "", err
	}

	// The token is stateless, so the account may have been deleted since it
	// was issued. Treat that the same as an invalid token.
	if _, err := users.GetUserByID(r.Context(), userID); err != nil {
		return "", err
	}

	return userID, nil
}
