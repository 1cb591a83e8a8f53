package push

import (
	"context"

	"storefront/internal/browser"
	"storefront/internal/domain"

	"go.uber.org/zap"
)

// DismissedKey is the session-storage flag suppressing repeated prompts
// within one browsing session. It is never synced to the platform.
const DismissedKey = "push_notification_dismissed"

// NotificationsAPI is the slice of the platform client the manager needs.
type NotificationsAPI interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	RegisterPushSubscription(ctx context.Context, sub *domain.PushSubscription) error
}

// Status describes where the session sits in the subscription state
// machine: unsupported -> default -> granted|denied, plus whether a
// subscription object already exists in the push manager.
type Status struct {
	Supported  bool               `json:"supported"`
	Permission browser.Permission `json:"permission"`
	Subscribed bool               `json:"subscribed"`
}

// Manager drives the push-notification subscribe flow. Every operation
// catches its own failures: Subscribe never lets an error escape its
// boundary, it logs and reports false instead.
type Manager struct {
	notifications browser.Notifications
	serviceWorker browser.ServiceWorker
	api           NotificationsAPI
	sessions      browser.Storage
	logger        *zap.Logger
}

// NewManager creates a push manager. notifications or serviceWorker may be
// nil when the user agent lacks the capability; every operation then
// reports unsupported.
func NewManager(
	notifications browser.Notifications,
	serviceWorker browser.ServiceWorker,
	api NotificationsAPI,
	sessions browser.Storage,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		notifications: notifications,
		serviceWorker: serviceWorker,
		api:           api,
		sessions:      sessions,
		logger:        logger,
	}
}

// Supported reports whether the user agent carries both the notification
// and service worker capabilities.
func (m *Manager) Supported() bool {
	return m.notifications != nil && m.serviceWorker != nil
}

// Status returns the current subscription status without prompting.
func (m *Manager) Status(ctx context.Context) Status {
	if !m.Supported() {
		return Status{}
	}
	return Status{
		Supported:  true,
		Permission: m.notifications.Permission(),
		Subscribed: m.CheckSubscription(ctx),
	}
}

// Subscribe runs the full flow: request permission, await service worker
// readiness, reuse or create a subscription, then register it with the
// platform. It returns true only when the platform registration succeeds.
// A denied permission is terminal; no backend call is made.
func (m *Manager) Subscribe(ctx context.Context) bool {
	if !m.Supported() {
		m.logger.Warn("Push notifications are not supported by this user agent")
		return false
	}

	permission, err := m.notifications.RequestPermission(ctx)
	if err != nil {
		m.logger.Error("Failed to request notification permission", zap.Error(err))
		return false
	}
	if permission != browser.PermissionGranted {
		m.logger.Info("Notification permission not granted",
			zap.String("permission", string(permission)),
		)
		return false
	}

	pushManager, err := m.serviceWorker.Ready(ctx)
	if err != nil {
		m.logger.Error("Service worker never became ready", zap.Error(err))
		return false
	}

	subscription, err := pushManager.Subscription(ctx)
	if err != nil {
		m.logger.Error("Failed to read existing push subscription", zap.Error(err))
		return false
	}

	if subscription == nil {
		publicKey, err := m.api.VAPIDPublicKey(ctx)
		if err != nil {
			m.logger.Error("Failed to fetch VAPID public key", zap.Error(err))
			return false
		}
		serverKey, err := DecodeVAPIDKey(publicKey)
		if err != nil {
			m.logger.Error("Failed to decode VAPID public key", zap.Error(err))
			return false
		}

		subscription, err = pushManager.Subscribe(ctx, browser.SubscribeOptions{
			UserVisibleOnly:      true,
			ApplicationServerKey: serverKey,
		})
		if err != nil {
			m.logger.Error("Failed to create push subscription", zap.Error(err))
			return false
		}
	}

	if err := m.api.RegisterPushSubscription(ctx, subscription); err != nil {
		m.logger.Error("Failed to register push subscription with platform", zap.Error(err))
		return false
	}

	m.logger.Info("Push subscription registered")
	return true
}

// CheckSubscription reports whether the session is already subscribed:
// permission granted and a subscription present. It never prompts and
// never errors past its boundary.
func (m *Manager) CheckSubscription(ctx context.Context) bool {
	if !m.Supported() {
		return false
	}
	if m.notifications.Permission() != browser.PermissionGranted {
		return false
	}

	pushManager, err := m.serviceWorker.Ready(ctx)
	if err != nil {
		m.logger.Error("Failed to check push subscription", zap.Error(err))
		return false
	}
	subscription, err := pushManager.Subscription(ctx)
	if err != nil {
		m.logger.Error("Failed to check push subscription", zap.Error(err))
		return false
	}
	return subscription != nil
}

// Dismiss records that the user declined the prompt for the rest of this
// browsing session.
func (m *Manager) Dismiss(ctx context.Context) {
	if err := m.sessions.Set(ctx, DismissedKey, "true"); err != nil {
		m.logger.Error("Failed to record push prompt dismissal", zap.Error(err))
	}
}

// Dismissed reports whether the prompt was dismissed this session.
func (m *Manager) Dismissed(ctx context.Context) bool {
	value, err := m.sessions.Get(ctx, DismissedKey)
	if err != nil {
		return false
	}
	return value == "true"
}

// ShouldPrompt reports whether the subscription dialog should be offered:
// supported, not yet subscribed, permission not granted and not dismissed
// this session. The fixed presentation delay is the caller's concern.
func (m *Manager) ShouldPrompt(ctx context.Context) bool {
	if !m.Supported() {
		return false
	}
	status := m.Status(ctx)
	if status.Subscribed || status.Permission == browser.PermissionGranted {
		return false
	}
	return !m.Dismissed(ctx)
}
