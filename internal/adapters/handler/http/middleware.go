package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

type contextKey string

const UserIDKey contextKey = "user_id"

const accessTokenCookie = "access_token"

// RequireAuth accepts "Authorization: Bearer <token>" and falls back to the
// access_token cookie.
func RequireAuth(auth ports.TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, r, domain.ErrMissingToken)
				return
			}

			userID, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Stringer("user_id", userID)
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return header
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return strings.TrimPrefix(cookie.Value, "Bearer ")
	}
	return ""
}

func userIDFrom(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
