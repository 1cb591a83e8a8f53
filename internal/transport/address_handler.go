package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateAddressRequest represents the address registration payload
type CreateAddressRequest struct {
	Name   string  `json:"name"`
	City   string  `json:"city" validate:"required"`
	Street string  `json:"street" validate:"required"`
	Number string  `json:"number"`
	Lat    float64 `json:"lat"`
	Long   float64 `json:"long"`
	Phone  string  `json:"phone"`
}

// AddressHandler handles HTTP requests for delivery addresses
type AddressHandler struct {
	sessions *Sessions
	logger   *zap.Logger
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(sessions *Sessions, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers all address routes
func (h *AddressHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/addresses", func(r chi.Router) {
		r.Get("/", h.ListAddresses)
		r.Post("/", h.CreateAddress)
		r.Delete("/{addressID}", h.DeleteAddress)
	})
}

// ListAddresses handles reading the user's saved addresses
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	user := entry.Auth.User()
	if user == nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	addresses, err := entry.Client.Addresses(r.Context(), user.PublicID)
	if err != nil {
		h.logger.Error("Failed to list addresses", zap.Error(err))
		respondWithPlatformError(w, "failed to load addresses", err)
		return
	}
	if addresses == nil {
		addresses = []domain.Address{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, addresses)
}

// CreateAddress handles registering a new delivery address
func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	user := entry.Auth.User()
	if user == nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req CreateAddressRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Address validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	address, err := entry.Client.CreateAddress(r.Context(), domain.CreateAddress{
		UserID: user.PublicID,
		Name:   req.Name,
		City:   req.City,
		Street: req.Street,
		Number: req.Number,
		Lat:    req.Lat,
		Long:   req.Long,
		Phone:  req.Phone,
	})
	if err != nil {
		h.logger.Error("Failed to create address", zap.Error(err))
		respondWithPlatformError(w, "failed to save address", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

// DeleteAddress handles removing a saved address
func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if !entry.Auth.IsAuthenticated() {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	addressID, err := strconv.Atoi(chi.URLParam(r, "addressID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid address id")
		return
	}

	if err := entry.Client.DeleteAddress(r.Context(), addressID); err != nil {
		h.logger.Error("Failed to delete address",
			zap.Int("address_id", addressID),
			zap.Error(err),
		)
		respondWithPlatformError(w, "failed to delete address", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "address deleted"})
}
