package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// NominatimGeocoder resolves coordinates through a Nominatim-compatible
// reverse geocoding endpoint.
type NominatimGeocoder struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

// NewNominatimGeocoder creates a reverse geocoder against baseURL.
func NewNominatimGeocoder(baseURL string, timeout time.Duration, logger *zap.Logger) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// DisplayName resolves coordinates into a human-readable address.
func (g *NominatimGeocoder) DisplayName(ctx context.Context, lat, long float64) (string, error) {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(long, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocode request: %w", err)
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode request failed: status %d", resp.StatusCode)
	}

	var out struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	return out.DisplayName, nil
}
