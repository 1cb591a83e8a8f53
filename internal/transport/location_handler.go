package transport

import (
	"fmt"
	"net/http"

	"storefront/internal/geo"
	"storefront/internal/middleware"
	"storefront/internal/state"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SetLocationRequest represents the location selection payload
type SetLocationRequest struct {
	Lat  float64 `json:"lat" validate:"required"`
	Long float64 `json:"long" validate:"required"`
}

// LocationResponse represents the session's location selection
type LocationResponse struct {
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
	Address string  `json:"address"`
}

// LocationHandler keeps the session's chosen delivery location and
// resolves coordinates to an address through the reverse geocoder.
type LocationHandler struct {
	sessions *Sessions
	geocoder geo.ReverseGeocoder
	logger   *zap.Logger
}

// NewLocationHandler creates a new LocationHandler. geocoder may be nil;
// the selection then keeps a coordinate label.
func NewLocationHandler(sessions *Sessions, geocoder geo.ReverseGeocoder, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{
		sessions: sessions,
		geocoder: geocoder,
		logger:   logger,
	}
}

// RegisterRoutes registers all location routes
func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/location", func(r chi.Router) {
		r.Get("/", h.GetLocation)
		r.Put("/", h.SetLocation)
		r.Delete("/", h.ClearLocation)
	})
}

// GetLocation handles reading the current selection
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	loc := entry.Loc.Location()
	if loc == nil {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"location": nil})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location": LocationResponse{Lat: loc.Lat, Long: loc.Long, Address: loc.Address},
	})
}

// SetLocation handles replacing the selection with fresh coordinates
func (h *LocationHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var req SetLocationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Location validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A failed lookup falls back to a coordinate label so the selection
	// still sticks.
	address := fmt.Sprintf("%.5f, %.5f", req.Lat, req.Long)
	if h.geocoder != nil {
		if name, err := h.geocoder.DisplayName(r.Context(), req.Lat, req.Long); err != nil {
			h.logger.Warn("Reverse geocoding failed", zap.Error(err))
		} else if name != "" {
			address = name
		}
	}

	entry.Loc.Set(state.Location{Lat: req.Lat, Long: req.Long, Address: address})

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"location": LocationResponse{Lat: req.Lat, Long: req.Long, Address: address},
	})
}

// ClearLocation handles dropping the selection
func (h *LocationHandler) ClearLocation(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	entry.Loc.Clear()
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"location": nil})
}
