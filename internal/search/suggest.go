// Package search fetches typeahead product suggestions. Queries are
// debounced, sprayed across the platform's redundant search parameters,
// re-filtered client side against an overly permissive backend and capped.
// This is not a cache: every settled query hits the network again.
package search

import (
	"context"
	"strings"
	"time"

	"storefront/internal/backend"
	"storefront/internal/domain"

	"go.uber.org/zap"
)

// Defaults mirror the storefront's search box behavior.
const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultMinLength      = 3
	DefaultMaxSuggestions = 5
)

// CatalogAPI is the slice of the platform client the suggester needs.
type CatalogAPI interface {
	Products(ctx context.Context, q backend.ProductQuery) (*backend.ProductPage, error)
}

// Config tunes the suggester. Zero values fall back to the defaults.
type Config struct {
	Debounce       time.Duration
	MinLength      int
	MaxSuggestions int
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinLength
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = DefaultMaxSuggestions
	}
	return c
}

// Suggester produces product suggestions for a stream of query edits.
type Suggester struct {
	api     CatalogAPI
	cfg     Config
	logger  *zap.Logger
	queries chan string
}

// NewSuggester creates a suggester.
func NewSuggester(api CatalogAPI, cfg Config, logger *zap.Logger) *Suggester {
	return &Suggester{
		api:     api,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		queries: make(chan string, 16),
	}
}

// SetQuery records the latest query text. Edits are debounced by Run.
func (s *Suggester) SetQuery(query string) {
	select {
	case s.queries <- query:
	default:
		// Drop when the consumer is this far behind; only the latest
		// settled query matters.
	}
}

// Run consumes query edits until ctx is done, publishing suggestions for
// each query that settles for the debounce interval. Failed fetches
// publish an empty list.
func (s *Suggester) Run(ctx context.Context, publish func(query string, products []domain.Product)) {
	var (
		pending string
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case q := <-s.queries:
			pending = q
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.cfg.Debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			publish(pending, s.Fetch(ctx, pending))
		}
	}
}

// Fetch queries the platform for suggestions matching query. Queries
// shorter than the minimum length yield nil without a network call.
// Results are re-filtered by a case-insensitive substring match over name
// and description and truncated to the configured maximum.
func (s *Suggester) Fetch(ctx context.Context, query string) []domain.Product {
	if len(query) < s.cfg.MinLength {
		return nil
	}

	page, err := s.api.Products(ctx, backend.ProductQuery{Search: query})
	if err != nil {
		s.logger.Error("Failed to fetch suggestions",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}

	filtered := Filter(page.Products, query)
	if len(filtered) > s.cfg.MaxSuggestions {
		filtered = filtered[:s.cfg.MaxSuggestions]
	}
	return filtered
}

// Filter keeps the products whose name or description contains the query,
// case-insensitively. The defensive re-filter exists because some platform
// deployments ignore the search parameters and return an unrelated page.
func Filter(products []domain.Product, query string) []domain.Product {
	needle := strings.ToLower(query)
	var matched []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}
