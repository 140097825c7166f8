package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key for storing the authenticated user.
const userKey contextKey = "user"

// UserSource loads the account behind a validated token. Tokens outlive
// account changes, so the user record is reloaded on every request.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GetUser extracts the authenticated user from the context.
// Returns nil if the request did not pass RequireAuth.
func GetUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// RequireAuth returns a middleware that validates Bearer tokens and loads the
// authenticated user into the request context. Requests with missing or
// invalid tokens, or for deactivated or deleted accounts, are rejected with
// 401.
func RequireAuth(jwtManager *auth.JWTManager, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil || user == nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}
			if !user.IsActive {
				unauthorized(w, auth.ErrAccountDeactivated.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
