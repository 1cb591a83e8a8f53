package transport

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/backend"
	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxAvatarBytes bounds the multipart profile form held in memory.
const maxAvatarBytes = 5 << 20

// LoginRequest represents the Google sign-in payload
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// ProfileResponse represents the session profile
type ProfileResponse struct {
	User       *domain.User `json:"user"`
	NeedsPhone bool         `json:"needs_phone"`
}

// ProfileHandler handles HTTP requests for authentication and the user
// profile. Credentials never reach the response body: the platform cookie
// is bound to the gateway session server-side.
type ProfileHandler struct {
	sessions *Sessions
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(sessions *Sessions, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers all profile routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/google", h.Login)
	r.Post("/api/auth/logout", h.Logout)
	r.Get("/api/me", h.Me)
	r.Put("/api/profile", h.UpdateProfile)
}

// Login handles Google sign-in: the ID token is exchanged with the
// platform and the returned credential is bound to the gateway session.
func (h *ProfileHandler) Login(w http.ResponseWriter, r *http.Request) {
	entry, sessionID, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cookie, err := entry.Client.Login(r.Context(), req.Token)
	if err != nil {
		h.logger.Debug("Platform login failed", zap.Error(err))
		respondWithPlatformError(w, "failed to login", err)
		return
	}

	if err := h.sessions.Store.BindPlatformCookie(r.Context(), sessionID, cookie); err != nil {
		h.logger.Error("Failed to bind platform credential", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	// Rebuild the session containers on the new credential and load the
	// profile.
	authed := h.sessions.Registry.Get(sessionID, cookie)
	user := authed.Auth.User()
	if user == nil {
		if user, err = authed.Auth.RefreshUser(r.Context()); err != nil {
			h.logger.Error("Failed to load profile after login", zap.Error(err))
		}
	}

	h.logger.Info("User logged in", zap.String("session_id", sessionID))
	middleware.RespondWithJSON(w, http.StatusOK, ProfileResponse{
		User:       user,
		NeedsPhone: user != nil && !user.HasPhone(),
	})
}

// Logout handles sign-out: the platform session is terminated and the
// gateway session returns to anonymous.
func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	entry, sessionID, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	// Local state clears even when the platform call fails.
	if err := entry.Auth.Logout(r.Context()); err != nil {
		h.logger.Debug("Platform logout failed", zap.Error(err))
	}

	if err := h.sessions.Store.UnbindPlatformCookie(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to unbind platform credential", zap.Error(err))
	}
	h.sessions.Registry.Drop(sessionID)

	h.logger.Info("User logged out", zap.String("session_id", sessionID))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Me handles reading the session profile
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	user, err := entry.Auth.RefreshUser(r.Context())
	if err != nil {
		h.logger.Error("Failed to refresh profile", zap.Error(err))
		// Keep serving the cached profile on transient failures.
		user = entry.Auth.User()
	}

	if user == nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProfileResponse{
		User:       user,
		NeedsPhone: !user.HasPhone(),
	})
}

// UpdateProfile handles partial profile updates, JSON or multipart with
// an avatar file.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if !entry.Auth.IsAuthenticated() {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	update, err := h.decodeProfileUpdate(r)
	if err != nil {
		h.logger.Debug("Profile update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := entry.Auth.UpdateProfile(r.Context(), update)
	if err != nil {
		h.logger.Error("Failed to update profile", zap.Error(err))
		respondWithPlatformError(w, "failed to update profile", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProfileResponse{
		User:       user,
		NeedsPhone: user != nil && !user.HasPhone(),
	})
}

func (h *ProfileHandler) decodeProfileUpdate(r *http.Request) (backend.ProfileUpdate, error) {
	contentType := r.Header.Get("Content-Type")

	if contentType == "" || strings.HasPrefix(contentType, "application/json") {
		var update backend.ProfileUpdate
		if err := middleware.DecodeAndValidate(r, &update); err != nil {
			return backend.ProfileUpdate{}, err
		}
		return update, nil
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		return backend.ProfileUpdate{}, err
	}

	update := backend.ProfileUpdate{
		Name:  r.FormValue("name"),
		Phone: r.FormValue("phone"),
	}

	file, header, err := r.FormFile("avatar")
	if err == nil {
		update.Avatar = file
		update.AvatarFilename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		return backend.ProfileUpdate{}, err
	}

	return update, nil
}
