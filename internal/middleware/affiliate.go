package middleware

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// ReferralCapturer persists a referral code for a visitor.
type ReferralCapturer interface {
	Capture(ctx context.Context, visitorID string, query url.Values)
}

// AffiliateMiddleware inspects every request for a referral query
// parameter and records it against the visitor. Capture failures never
// block the request.
func AffiliateMiddleware(capturer ReferralCapturer, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if visitorID, ok := GetVisitorID(r.Context()); ok {
				capturer.Capture(r.Context(), visitorID, r.URL.Query())
			} else {
				logger.Debug("No visitor ID in context, skipping referral capture")
			}

			next.ServeHTTP(w, r)
		})
	}
}
