// Package middlewarectx contains the HTTP middleware that resolves the
// caller's session and guards the authenticated route group.
//
// SessionMiddleware parses the bearer token once per request and stores
// the resolved session in the request context; every handler and
// service downstream reads that memoized value instead of re-parsing.
// The memo lives in the request context only, so nothing leaks across
// requests.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/replyflow/replyflow/internal/http/response"
	"github.com/replyflow/replyflow/internal/lib/sl"
	"github.com/replyflow/replyflow/internal/models"
)

// Key is the context-key type for request-scoped values.
type Key string

// SessionKey addresses the resolved session in the request context.
const SessionKey Key = "session"

// TokenParser validates a bearer token and returns the session it
// represents. Production wiring uses the JWT maker; tests and the test
// environment inject a stub at this boundary.
type TokenParser interface {
	ParseSession(token string) (*models.Session, error)
}

// SessionFromContext returns the memoized session, failing closed: the
// boolean is false when the request carried no valid session.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*models.Session)
	if !ok || sess == nil || sess.UserUID == "" {
		return nil, false
	}
	return sess, true
}

// SessionMiddleware returns middleware that requires a valid bearer
// token and memoizes the resolved session in the request context.
func SessionMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			sess, err := parser.ParseSession(tokenStr)
			if err != nil || sess == nil {
				if err != nil {
					log.Error("invalid or expired token", sl.Err(err))
				} else {
					log.Error("invalid or expired token")
				}
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
