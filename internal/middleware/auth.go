package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const SessionContextKey = contextKey("session")

// SessionValidator checks a bearer token and returns its session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.Session, error)
}

// SessionFromContext returns the session placed by AuthMiddleware, or nil
// for an anonymous request.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(SessionContextKey).(*model.Session)
	return sess
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}

// AuthMiddleware resolves the bearer token, if any, into a session. Requests
// without an Authorization header pass through anonymously; routes that need
// a session reject them in the handler.
func AuthMiddleware(sessions SessionValidator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.Warn().Msg("Invalid authorization header")
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.Validate(r.Context(), parts[1])
			if err != nil {
				if errors.Is(err, service.ErrInvalidSession) {
					logger.Warn().Err(err).Msg("Rejected session token")
					http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
					return
				}
				logger.Error().Err(err).Msg("Failed to validate session")
				http.Error(w, "Session validation unavailable", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
