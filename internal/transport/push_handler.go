package transport

import (
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/push"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PushHandler relays push-subscription traffic to the platform and keeps
// the per-session prompt dismissal flag. promptDelay is how long the front
// end waits before showing the subscription prompt.
type PushHandler struct {
	sessions    *Sessions
	promptDelay time.Duration
	logger      *zap.Logger
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(sessions *Sessions, promptDelay time.Duration, logger *zap.Logger) *PushHandler {
	return &PushHandler{sessions: sessions, promptDelay: promptDelay, logger: logger}
}

// RegisterRoutes registers all push routes
func (h *PushHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/push", func(r chi.Router) {
		r.Get("/vapid-public-key", h.VAPIDPublicKey)
		r.Post("/subscribe", h.Subscribe)
		r.Post("/dismiss", h.Dismiss)
		r.Get("/status", h.Status)
	})
}

// VAPIDPublicKey relays the platform's VAPID application server key.
func (h *PushHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	key, err := entry.Client.VAPIDPublicKey(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch VAPID key", zap.Error(err))
		respondWithPlatformError(w, "failed to fetch public key", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"publicKey": key})
}

// Subscribe relays a push subscription to the platform.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var sub domain.PushSubscription
	if err := middleware.DecodeAndValidate(r, &sub); err != nil {
		h.logger.Debug("Subscription decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.Endpoint == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "subscription endpoint is required")
		return
	}

	if err := entry.Client.RegisterPushSubscription(r.Context(), &sub); err != nil {
		h.logger.Error("Failed to register push subscription", zap.Error(err))
		respondWithPlatformError(w, "failed to register subscription", err)
		return
	}

	h.logger.Info("Push subscription registered")
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "subscribed"})
}

// Dismiss records that the user declined the prompt for the rest of this
// browsing session.
func (h *PushHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	storage := h.sessions.Store.Session(sessionID)
	if err := storage.Set(r.Context(), push.DismissedKey, "true"); err != nil {
		h.logger.Error("Failed to record dismissal", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record dismissal")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "dismissed"})
}

// PushStatusResponse tells the front end whether the prompt was dismissed
// this session and how long to wait before showing it.
type PushStatusResponse struct {
	Dismissed          bool `json:"dismissed"`
	PromptDelaySeconds int  `json:"prompt_delay_seconds"`
}

// Status reports whether the prompt was dismissed this session.
func (h *PushHandler) Status(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	storage := h.sessions.Store.Session(sessionID)
	value, err := storage.Get(r.Context(), push.DismissedKey)
	if err != nil {
		h.logger.Error("Failed to read dismissal flag", zap.Error(err))
	}

	middleware.RespondWithJSON(w, http.StatusOK, PushStatusResponse{
		Dismissed:          value == "true",
		PromptDelaySeconds: int(h.promptDelay.Seconds()),
	})
}
