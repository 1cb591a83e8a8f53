// Package browser defines narrow interfaces over the user-agent
// capabilities the storefront adapters orchestrate: notifications, the
// service worker push manager, the permissions registry, geolocation and
// the two web storage areas. Concrete implementations are supplied by the
// embedding front end; the adapters only depend on these contracts, which
// keeps the permission and subscription flows testable with fakes.
package browser

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrUnsupported is returned (or implied by a nil capability) when the
// user agent does not provide a capability. Callers degrade by hiding the
// related feature rather than surfacing an error.
var ErrUnsupported = errors.New("capability not supported by this user agent")

// Permission is the notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Notifications exposes the Notification permission surface.
type Notifications interface {
	// Permission returns the current state without prompting.
	Permission() Permission
	// RequestPermission prompts the user and returns the resulting state.
	// A denied result is terminal: it cannot be reversed programmatically.
	RequestPermission(ctx context.Context) (Permission, error)
}

// SubscribeOptions configures push subscription creation.
type SubscribeOptions struct {
	UserVisibleOnly      bool
	ApplicationServerKey []byte
}

// PushManager manages the user agent's push subscription.
type PushManager interface {
	// Subscription returns the existing subscription, or nil when none.
	Subscription(ctx context.Context) (*domain.PushSubscription, error)
	// Subscribe creates a new subscription.
	Subscribe(ctx context.Context, opts SubscribeOptions) (*domain.PushSubscription, error)
}

// ServiceWorker exposes the service worker registration lifecycle.
type ServiceWorker interface {
	// Ready blocks until the registration is active and returns its push
	// manager.
	Ready(ctx context.Context) (PushManager, error)
}

// PermissionState is the permissions-registry state for a named permission.
type PermissionState string

const (
	PermissionStatePrompt  PermissionState = "prompt"
	PermissionStateGranted PermissionState = "granted"
	PermissionStateDenied  PermissionState = "denied"
)

// PermissionStatus is a live view of one permission's state.
type PermissionStatus interface {
	State() PermissionState
	// OnChange registers fn to run whenever the state changes.
	OnChange(fn func(PermissionState))
}

// Permissions is the permissions registry.
type Permissions interface {
	Query(ctx context.Context, name string) (PermissionStatus, error)
}

// Position is a geolocation fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// PositionOptions configures a position request.
type PositionOptions struct {
	EnableHighAccuracy bool
	// Timeout bounds how long the user agent may take to produce a fix.
	TimeoutMillis int
	// MaximumAgeMillis allows a cached fix no older than this. Zero means
	// a fresh fix is required.
	MaximumAgeMillis int
}

// Geolocation position errors, mirroring the user agent's error codes.
var (
	ErrPositionPermissionDenied = errors.New("geolocation permission denied")
	ErrPositionUnavailable      = errors.New("position unavailable")
	ErrPositionTimeout          = errors.New("position request timed out")
)

// Geolocator produces the device's current position.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (*Position, error)
}

// Storage is a string key-value store. SessionStorage implementations are
// scoped to a browsing session; LocalStorage implementations are durable
// across sessions.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
