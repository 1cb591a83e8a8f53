// Package transport exposes the storefront's HTTP surface: thin handlers
// that resolve the caller's session containers and relay to the commerce
// platform.
package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/session"

	"go.uber.org/zap"
)

// Sessions resolves the per-request session containers. The platform
// credential lives in the session store; the registry caches the
// containers built on top of it.
type Sessions struct {
	Registry *session.Registry
	Store    *session.Store
	Logger   *zap.Logger
}

// Resolve returns the request's session containers along with the session
// id. A missing session id means the middleware stack is misconfigured.
func (s *Sessions) Resolve(r *http.Request) (*session.Entry, string, bool) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		s.Logger.Error("No session ID in request context",
			zap.String("path", r.URL.Path),
		)
		return nil, "", false
	}

	cookie, err := s.Store.PlatformCookie(r.Context(), sessionID)
	if err != nil {
		s.Logger.Error("Failed to load platform credential",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		// Fall back to an anonymous session rather than failing the
		// request: catalog endpoints work without a credential.
		cookie = ""
	}

	return s.Registry.Get(sessionID, cookie), sessionID, true
}
