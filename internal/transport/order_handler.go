package transport

import (
	"net/http"

	"storefront/internal/affiliate"
	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateOrderRequest represents the order placement payload. Items and
// total are not accepted from the client: the session cart is canonical.
type CreateOrderRequest struct {
	Address domain.Address `json:"address" validate:"required"`
	Phone   string         `json:"phone" validate:"required"`
}

// OrderHandler handles HTTP requests for order placement and history
type OrderHandler struct {
	sessions *Sessions
	tracker  *affiliate.Tracker
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(sessions *Sessions, tracker *affiliate.Tracker, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		sessions: sessions,
		tracker:  tracker,
		logger:   logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/orders", h.CreateOrder)
	r.Get("/api/orders", h.ListOrders)
}

// CreateOrder handles placing an order from the session cart. The
// visitor's persisted referral code, when any, rides along for
// attribution.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if !entry.Auth.IsAuthenticated() {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req CreateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Reconcile so the platform cart, not a stale copy, becomes the order.
	if err := entry.Cart.Refresh(r.Context()); err != nil {
		h.logger.Error("Failed to refresh cart before order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load cart")
		return
	}

	items := entry.Cart.Items()
	if len(items) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	payload := domain.CreateOrder{
		Items:      items,
		Address:    req.Address,
		Phone:      req.Phone,
		TotalPrice: entry.Cart.Subtotal(),
	}
	if visitorID, ok := middleware.GetVisitorID(r.Context()); ok {
		payload.AffiliateCode = h.tracker.Code(r.Context(), visitorID)
	}

	order, err := entry.Client.CreateOrder(r.Context(), payload)
	if err != nil {
		h.logger.Error("Failed to place order", zap.Error(err))
		respondWithPlatformError(w, "failed to place order", err)
		return
	}

	// The platform empties the cart on success; mirror it.
	if err := entry.Cart.Refresh(r.Context()); err != nil {
		h.logger.Error("Failed to refresh cart after order", zap.Error(err))
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.PublicID),
		zap.Bool("attributed", payload.AffiliateCode != ""),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles reading the user's order history
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := h.sessions.Resolve(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	if !entry.Auth.IsAuthenticated() {
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	}

	orders, err := entry.Client.UserOrders(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		respondWithPlatformError(w, "failed to load orders", err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}
