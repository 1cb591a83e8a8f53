package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/backend"
	"storefront/internal/state"

	"go.uber.org/zap"
)

// platformCookieKey is where the platform session credential lives in the
// session store.
const platformCookieKey = "platform_cookie"

// Entry is the set of state containers serving one browsing session.
type Entry struct {
	Client *backend.Client
	Auth   *state.AuthContainer
	Cart   *state.CartContainer
	Loc    *state.LocationContainer

	cookie   string
	lastSeen time.Time
}

// Registry holds the per-session container sets, lazily created and
// dropped after the idle TTL.
type Registry struct {
	client *backend.Client
	logger *zap.Logger
	ttl    time.Duration

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewRegistry creates a registry building containers on top of the given
// platform client.
func NewRegistry(client *backend.Client, ttl time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		client:  client,
		logger:  logger,
		ttl:     ttl,
		entries: make(map[string]*Entry),
	}
}

// Get returns the session's containers, creating them on first use and
// rebuilding them when the platform credential has changed (login/logout).
func (r *Registry) Get(sessionID, platformCookie string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[sessionID]
	if !ok || entry.cookie != platformCookie {
		entry = r.build(platformCookie)
		r.entries[sessionID] = entry
	}
	entry.lastSeen = time.Now()
	return entry
}

// Drop removes a session's containers, used on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// Evict removes entries idle longer than the TTL and reports how many
// were dropped.
func (r *Registry) Evict() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.ttl)
	dropped := 0
	for id, entry := range r.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			dropped++
		}
	}
	if dropped > 0 {
		r.logger.Debug("Evicted idle sessions", zap.Int("count", dropped))
	}
	return dropped
}

func (r *Registry) build(platformCookie string) *Entry {
	client := r.client.WithSession(platformCookie)
	auth := state.NewAuthContainer(client, r.logger)
	cart := state.NewCartContainer(client, auth, r.logger)
	if platformCookie != "" {
		// Prime the profile so cart operations know the user right away.
		// A transient failure here just means a later refresh.
		if _, err := auth.RefreshUser(context.Background()); err != nil {
			r.logger.Warn("Failed to prime session profile", zap.Error(err))
		}
	}
	return &Entry{
		Client: client,
		Auth:   auth,
		Cart:   cart,
		Loc:    state.NewLocationContainer(),
		cookie: platformCookie,
	}
}
