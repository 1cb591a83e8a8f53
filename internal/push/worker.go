package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// Notification display constants carried by every shown notification.
const (
	notificationIcon  = "/icon-192x192.png"
	notificationBadge = "/badge-72x72.png"
)

// DisplayOptions is how an incoming push payload is presented.
type DisplayOptions struct {
	Body  string
	Icon  string
	Badge string
	URL   string
	Tag   string
}

// Displayer shows notifications to the user.
type Displayer interface {
	Show(ctx context.Context, title string, opts DisplayOptions) error
}

// Window is an open storefront page the worker can focus and navigate.
type Window interface {
	URL() string
	Focus(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
}

// Windows enumerates open pages and opens new ones.
type Windows interface {
	All(ctx context.Context) ([]Window, error)
	Open(ctx context.Context, url string) error
	// Claim takes control of already-open pages immediately, the
	// activation behavior of the background worker.
	Claim(ctx context.Context) error
}

// Worker is the background push handler: it parses incoming push events,
// shows notifications, and resolves notification clicks by focusing an
// existing same-origin window or opening a new one.
type Worker struct {
	displayer Displayer
	windows   Windows
	origin    string
	logger    *zap.Logger

	now func() time.Time
}

// NewWorker creates a push worker for the given origin.
func NewWorker(displayer Displayer, windows Windows, origin string, logger *zap.Logger) *Worker {
	return &Worker{
		displayer: displayer,
		windows:   windows,
		origin:    origin,
		logger:    logger,
		now:       time.Now,
	}
}

// Activate claims control of open pages. Called once when the worker
// starts.
func (w *Worker) Activate(ctx context.Context) error {
	if err := w.windows.Claim(ctx); err != nil {
		return fmt.Errorf("failed to claim open pages: %w", err)
	}
	return nil
}

// HandlePush parses a push event body and shows the notification.
// Malformed payloads are logged and dropped.
func (w *Worker) HandlePush(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var payload domain.PushPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		w.logger.Error("Dropping malformed push payload", zap.Error(err))
		return fmt.Errorf("malformed push payload: %w", err)
	}

	url := payload.URL
	if url == "" {
		url = "/"
	}

	opts := DisplayOptions{
		Body:  payload.Body,
		Icon:  notificationIcon,
		Badge: notificationBadge,
		URL:   url,
		Tag:   fmt.Sprintf("notification-%d", w.now().UnixMilli()),
	}
	if err := w.displayer.Show(ctx, payload.Title, opts); err != nil {
		w.logger.Error("Failed to show notification", zap.Error(err))
		return err
	}
	return nil
}

// HandleClick resolves a notification click: focus and navigate the first
// open same-origin window, otherwise open a new one at the target URL.
func (w *Worker) HandleClick(ctx context.Context, targetURL string) error {
	if targetURL == "" {
		targetURL = "/"
	}

	windows, err := w.windows.All(ctx)
	if err != nil {
		w.logger.Error("Failed to enumerate open windows", zap.Error(err))
		return err
	}

	for _, win := range windows {
		if !strings.Contains(win.URL(), w.origin) {
			continue
		}
		if err := win.Focus(ctx); err != nil {
			w.logger.Error("Failed to focus window", zap.Error(err))
			continue
		}
		return win.Navigate(ctx, targetURL)
	}

	return w.windows.Open(ctx, targetURL)
}
