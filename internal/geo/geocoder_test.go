package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNominatimGeocoderResolvesDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "32.08", r.URL.Query().Get("lat"))
		assert.Equal(t, "34.78", r.URL.Query().Get("lon"))
		json.NewEncoder(w).Encode(map[string]string{"display_name": "Dizengoff 1, Tel Aviv"})
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, time.Second, zap.NewNop())
	name, err := g.DisplayName(context.Background(), 32.08, 34.78)
	require.NoError(t, err)
	assert.Equal(t, "Dizengoff 1, Tel Aviv", name)
}

func TestNominatimGeocoderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, time.Second, zap.NewNop())
	_, err := g.DisplayName(context.Background(), 1, 2)
	assert.Error(t, err)
}
