package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrAttributionNotFound = errors.New("affiliate attribution not found")

// AffiliateRepository persists the referral code captured for each
// visitor so order attribution survives full reloads and new sessions.
type AffiliateRepository interface {
	Save(ctx context.Context, visitorID, code string) error
	Find(ctx context.Context, visitorID string) (string, error)
}

type affiliateRepository struct {
	db *sql.DB
}

// NewAffiliateRepository creates a new instance of AffiliateRepository.
func NewAffiliateRepository(db *sql.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

// Save upserts the visitor's referral code using parameterized queries.
// A later capture overwrites an earlier one (last referral wins).
func (r *affiliateRepository) Save(ctx context.Context, visitorID, code string) error {
	query := `
		INSERT INTO affiliate_attributions (visitor_id, code, captured_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (visitor_id)
		DO UPDATE SET code = EXCLUDED.code, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, visitorID, code, time.Now()); err != nil {
		return fmt.Errorf("failed to save affiliate attribution: %w", err)
	}
	return nil
}

// Find retrieves the visitor's referral code.
func (r *affiliateRepository) Find(ctx context.Context, visitorID string) (string, error) {
	query := `
		SELECT code
		FROM affiliate_attributions
		WHERE visitor_id = $1
	`

	var code string
	err := r.db.QueryRowContext(ctx, query, visitorID).Scan(&code)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrAttributionNotFound
		}
		return "", fmt.Errorf("failed to find affiliate attribution: %w", err)
	}
	return code, nil
}
