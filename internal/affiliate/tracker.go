// Package affiliate captures referral codes from landing URLs and
// persists them durably for later order attribution.
package affiliate

import (
	"context"
	"errors"
	"net/url"

	"storefront/internal/repository"

	"go.uber.org/zap"
)

// QueryParam is the landing-URL query parameter carrying a referral code.
const QueryParam = "r"

// Tracker records and retrieves a visitor's referral code.
type Tracker struct {
	repo   repository.AffiliateRepository
	logger *zap.Logger
}

// NewTracker creates a tracker backed by the attribution repository.
func NewTracker(repo repository.AffiliateRepository, logger *zap.Logger) *Tracker {
	return &Tracker{repo: repo, logger: logger}
}

// Capture inspects the landing query for a referral code and, when
// present, persists it for the visitor. Persistence failures are logged
// only: a broken attribution store must never break page loads.
func (t *Tracker) Capture(ctx context.Context, visitorID string, query url.Values) {
	code := query.Get(QueryParam)
	if code == "" || visitorID == "" {
		return
	}

	if err := t.repo.Save(ctx, visitorID, code); err != nil {
		t.logger.Error("Failed to persist affiliate code",
			zap.String("visitor_id", visitorID),
			zap.Error(err),
		)
		return
	}

	t.logger.Info("Captured affiliate code",
		zap.String("visitor_id", visitorID),
		zap.String("code", code),
	)
}

// Code returns the visitor's persisted referral code, or "" when none was
// ever captured.
func (t *Tracker) Code(ctx context.Context, visitorID string) string {
	if visitorID == "" {
		return ""
	}

	code, err := t.repo.Find(ctx, visitorID)
	if err != nil {
		if !errors.Is(err, repository.ErrAttributionNotFound) {
			t.logger.Error("Failed to load affiliate code",
				zap.String("visitor_id", visitorID),
				zap.Error(err),
			)
		}
		return ""
	}
	return code
}
