package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	VisitorIDKey contextKey = "visitor_id"
)

const (
	// SessionCookie identifies the browsing session. It lives until the
	// browser is closed, like the tab-scoped state it guards.
	SessionCookie = "storefront_session"

	// VisitorCookie survives browser restarts so order attribution can
	// outlive the session that captured the referral.
	VisitorCookie = "visitor_id"
)

// SessionMiddleware mints the session and visitor cookies when absent and
// places both identifiers in the request context.
func SessionMiddleware(visitorMaxAge time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := cookieValue(r, SessionCookie)
			if sessionID == "" {
				sessionID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug("Minted session cookie", zap.String("session_id", sessionID))
			}

			visitorID := cookieValue(r, VisitorCookie)
			if visitorID == "" {
				visitorID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    visitorID,
					Path:     "/",
					MaxAge:   int(visitorMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
			ctx = context.WithValue(ctx, VisitorIDKey, visitorID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the session ID from the request context.
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}

// GetVisitorID extracts the visitor ID from the request context.
func GetVisitorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(VisitorIDKey).(string)
	return id, ok
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
