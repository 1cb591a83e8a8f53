package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/backend"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/search"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultPerPage is the catalog page size when the client does not ask
// for one.
const defaultPerPage = 12

// CatalogHandler serves product listings, categories and search
// suggestions. Catalog data needs no session credential, so it talks to
// the platform through the shared anonymous client.
type CatalogHandler struct {
	client    *backend.Client
	suggester *search.Suggester
	logger    *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(client *backend.Client, suggester *search.Suggester, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		client:    client,
		suggester: suggester,
		logger:    logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/category/{categoryID}", h.ListProductsByCategory)
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/search/suggestions", h.Suggestions)
}

// ListProducts handles catalog listing and search
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := backend.ProductQuery{
		Search:  r.URL.Query().Get("search"),
		Page:    intParam(r, "page", 1),
		PerPage: intParam(r, "per_page", defaultPerPage),
	}

	page, err := h.client.Products(r.Context(), q)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products":   page.Products,
		"pagination": page.Pagination,
	})
}

// ListProductsByCategory handles listing the products of one category
func (h *CatalogHandler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")

	page, err := h.client.ProductsByCategory(r.Context(), categoryID,
		intParam(r, "page", 1), intParam(r, "per_page", defaultPerPage))
	if err != nil {
		h.logger.Error("Failed to list category products",
			zap.String("category_id", categoryID),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products":   page.Products,
		"pagination": page.Pagination,
	})
}

// ListCategories handles listing the category tree
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.client.Categories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Suggestions handles search-as-you-type suggestions. Short queries
// return an empty list without touching the platform.
func (h *CatalogHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products := h.suggester.Fetch(r.Context(), query)
	if products == nil {
		products = []domain.Product{}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":    query,
		"products": products,
	})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
