package transport

import (
	"errors"
	"net/http"

	"storefront/internal/backend"
	"storefront/internal/middleware"
)

// respondWithPlatformError maps a platform client error onto the gateway
// response: platform rejections keep their status, everything else is a
// bad gateway.
func respondWithPlatformError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, backend.ErrUnauthenticated) {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		middleware.RespondWithError(w, apiErr.StatusCode, apiErr.Message)
		return
	}

	middleware.RespondWithError(w, http.StatusBadGateway, message)
}
