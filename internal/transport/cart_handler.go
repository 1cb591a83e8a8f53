package transport

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/state"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart request payload
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateQuantityRequest represents the quantity-change request payload
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartResponse represents the session cart
type CartResponse struct {
	CartID     string            `json:"cart_id"`
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	Subtotal   float64           `json:"subtotal"`
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	sessions *Sessions
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(sessions *Sessions, logger *zap.Logger) *CartHandler {
	return &CartHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{itemID}", h.UpdateItem)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})
}

// GetCart handles reading the session cart, refreshing it from the
// platform first so the response reflects the canonical state.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if entry.Auth.IsAuthenticated() {
		if err := entry.Cart.Refresh(r.Context()); err != nil {
			h.logger.Error("Failed to refresh cart", zap.Error(err))
		}
	}

	h.respondWithCart(w, entry.Cart)
}

// AddItem handles adding a product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	var req AddToCartRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := entry.Cart.AddToCart(r.Context(), domain.Product{ID: req.ProductID}, req.Quantity)
	if err != nil {
		h.respondWithCartError(w, "failed to add to cart", err)
		return
	}

	h.respondWithCart(w, entry.Cart)
}

// UpdateItem handles changing a cart item's quantity
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update quantity validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := entry.Cart.UpdateQuantity(r.Context(), itemID, req.Quantity); err != nil {
		h.respondWithCartError(w, "failed to update quantity", err)
		return
	}

	h.respondWithCart(w, entry.Cart)
}

// RemoveItem handles removing one item from the cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	itemID, err := strconv.Atoi(chi.URLParam(r, "itemID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := entry.Cart.RemoveFromCart(r.Context(), itemID); err != nil {
		h.respondWithCartError(w, "failed to remove from cart", err)
		return
	}

	h.respondWithCart(w, entry.Cart)
}

// ClearCart handles emptying the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if err := entry.Cart.ClearCart(r.Context()); err != nil {
		h.respondWithCartError(w, "failed to clear cart", err)
		return
	}

	h.respondWithCart(w, entry.Cart)
}

func (h *CartHandler) respondWithCart(w http.ResponseWriter, cart *state.CartContainer) {
	items := cart.Items()
	if items == nil {
		items = []domain.CartItem{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		CartID:     cart.CartID(),
		Items:      items,
		TotalItems: cart.TotalItems(),
		Subtotal:   cart.Subtotal(),
	})
}

func (h *CartHandler) respondWithCartError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, state.ErrNotAuthenticated) {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}
	respondWithPlatformError(w, message, err)
}
