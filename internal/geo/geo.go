// Package geo adapts the user agent's geolocation capabilities for the
// storefront: a live permission watcher and an on-demand position request
// used to drive address lookup through a reverse geocoder.
package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/browser"

	"go.uber.org/zap"
)

const permissionName = "geolocation"

// Watcher tracks the geolocation permission state and re-publishes live
// changes. When the permissions capability is absent it reports "prompt",
// the only honest answer before asking.
type Watcher struct {
	logger *zap.Logger

	mu        sync.RWMutex
	state     browser.PermissionState
	listeners []func(browser.PermissionState)
}

// NewWatcher starts watching the geolocation permission. permissions may
// be nil.
func NewWatcher(ctx context.Context, permissions browser.Permissions, logger *zap.Logger) *Watcher {
	w := &Watcher{logger: logger, state: browser.PermissionStatePrompt}

	if permissions == nil {
		return w
	}

	status, err := permissions.Query(ctx, permissionName)
	if err != nil {
		logger.Warn("Failed to query geolocation permission", zap.Error(err))
		return w
	}

	w.setState(status.State())
	status.OnChange(w.setState)
	return w
}

// State returns the last observed permission state.
func (w *Watcher) State() browser.PermissionState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// OnChange registers fn to run whenever the permission state changes.
func (w *Watcher) OnChange(fn func(browser.PermissionState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

func (w *Watcher) setState(state browser.PermissionState) {
	w.mu.Lock()
	changed := w.state != state
	w.state = state
	listeners := make([]func(browser.PermissionState), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(state)
	}
}

// Requester asks the user agent for the current position with high
// accuracy, a fixed timeout and no cached fixes.
type Requester struct {
	geolocator browser.Geolocator
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRequester creates a position requester. geolocator may be nil when
// the capability is absent.
func NewRequester(geolocator browser.Geolocator, timeout time.Duration, logger *zap.Logger) *Requester {
	return &Requester{geolocator: geolocator, timeout: timeout, logger: logger}
}

// RequestPosition asks for a fresh high-accuracy fix. On failure it
// returns no position and an error whose human-readable form is available
// through ErrorMessage; nothing escapes the adapter boundary as a panic.
func (r *Requester) RequestPosition(ctx context.Context) (*browser.Position, error) {
	if r.geolocator == nil {
		return nil, browser.ErrUnsupported
	}

	pos, err := r.geolocator.CurrentPosition(ctx, browser.PositionOptions{
		EnableHighAccuracy: true,
		TimeoutMillis:      int(r.timeout.Milliseconds()),
		MaximumAgeMillis:   0,
	})
	if err != nil {
		r.logger.Warn("Failed to get current position", zap.Error(err))
		return nil, err
	}
	return pos, nil
}

// ErrorMessage maps a position error to the string shown to the user.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, browser.ErrUnsupported):
		return "Geolocation is not supported by this browser."
	case errors.Is(err, browser.ErrPositionPermissionDenied):
		return "Location access was denied. Enable it in your browser settings to use this feature."
	case errors.Is(err, browser.ErrPositionUnavailable):
		return "Your location is currently unavailable. Try again in a moment."
	case errors.Is(err, browser.ErrPositionTimeout):
		return "Locating you took too long. Try again."
	default:
		return "Could not determine your location."
	}
}

// ReverseGeocoder resolves coordinates into a display address. The
// implementation is an external collaborator.
type ReverseGeocoder interface {
	DisplayName(ctx context.Context, lat, long float64) (string, error)
}
