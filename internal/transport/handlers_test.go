package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/affiliate"
	"storefront/internal/backend"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/search"
	"storefront/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePlatform emulates the commerce platform API with just enough
// behavior for the gateway flows: cookie-gated auth, a server-owned cart
// and order capture.
type fakePlatform struct {
	mu        sync.Mutex
	items     []domain.CartItem
	nextID    int
	lastOrder *domain.CreateOrder
	products  []domain.Product
	userPhone string

	// Some deployments answer order creation with an empty body.
	emptyOrderBody bool
}

func (p *fakePlatform) user() domain.User {
	return domain.User{
		Name:     "Dana",
		Email:    "dana@example.com",
		PublicID: "u1",
		Phone:    p.userPhone,
	}
}

func (p *fakePlatform) authed(r *http.Request) bool {
	for _, c := range r.Cookies() {
		if c.Name == "session" && c.Value == "tok123" {
			return true
		}
	}
	return false
}

func (p *fakePlatform) handler() http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/auth/google", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok123"})
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !p.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		p.mu.Lock()
		user := p.user()
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	})

	mux.HandleFunc("/users/profile/update", func(w http.ResponseWriter, r *http.Request) {
		if !p.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		var req struct {
			Phone string `json:"phone"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		p.mu.Lock()
		if req.Phone != "" {
			p.userPhone = req.Phone
		}
		user := p.user()
		p.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	})

	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	mux.HandleFunc("/carts/user/cart", func(w http.ResponseWriter, r *http.Request) {
		if !p.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"cart": domain.Cart{ID: 1, PublicID: "c1", Items: p.items},
		})
	})

	mux.HandleFunc("/carts/add", func(w http.ResponseWriter, r *http.Request) {
		if !p.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		var req struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		p.mu.Lock()
		p.nextID++
		item := domain.CartItem{
			ID:       p.nextID,
			Quantity: req.Quantity,
			Product:  domain.Product{ID: req.ProductID, Name: "Margherita", Price: 10},
		}
		p.items = append(p.items, item)
		p.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]interface{}{"cart_item": item})
	})

	mux.HandleFunc("/orders/order/new", func(w http.ResponseWriter, r *http.Request) {
		if !p.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		var order domain.CreateOrder
		json.NewDecoder(r.Body).Decode(&order)

		p.mu.Lock()
		p.lastOrder = &order
		p.items = nil
		empty := p.emptyOrderBody
		p.mu.Unlock()

		if empty {
			writeJSON(w, http.StatusOK, map[string]interface{}{})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"order": domain.Order{PublicID: "o1", Status: "pending"},
		})
	})

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		products := p.products
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"products":   products,
			"pagination": domain.Pagination{TotalItems: len(products), TotalPages: 1, CurrentPage: 1, PerPage: 12},
		})
	})

	mux.HandleFunc("/notifications/vapid-public-key", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"publicKey": "BApplicationServerKey"})
	})

	mux.HandleFunc("/notifications/subscribe", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": false})
	})

	return mux
}

// staticGeocoder resolves every coordinate to the same display name.
type staticGeocoder string

func (g staticGeocoder) DisplayName(context.Context, float64, float64) (string, error) {
	return string(g), nil
}

// memoryAttributions is an in-memory AffiliateRepository.
type memoryAttributions struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *memoryAttributions) Save(_ context.Context, visitorID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[visitorID] = code
	return nil
}

func (m *memoryAttributions) Find(_ context.Context, visitorID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[visitorID]
	if !ok {
		return "", repository.ErrAttributionNotFound
	}
	return code, nil
}

type gateway struct {
	server   *httptest.Server
	platform *fakePlatform
	repo     *memoryAttributions
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	logger := zap.NewNop()

	platform := &fakePlatform{
		userPhone: "0541234567",
		products: []domain.Product{
			{ID: "p1", Name: "Margherita", Price: 10, Description: "classic"},
			{ID: "p2", Name: "Mozzarella Sticks", Price: 6, Description: "fried"},
			{ID: "p3", Name: "Cola", Price: 3, Description: "cold drink"},
		},
	}
	platformSrv := httptest.NewServer(platform.handler())
	t.Cleanup(platformSrv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	client := backend.New(platformSrv.URL, 5*time.Second, logger)
	store := session.NewStore(rdb, time.Hour)
	registry := session.NewRegistry(client, time.Hour, logger)
	sessions := &Sessions{Registry: registry, Store: store, Logger: logger}

	repo := &memoryAttributions{}
	tracker := affiliate.NewTracker(repo, logger)

	suggester := search.NewSuggester(client, search.Config{}, logger)

	router := chi.NewRouter()
	router.Use(middleware.SessionMiddleware(time.Hour, logger))
	router.Use(middleware.AffiliateMiddleware(tracker, logger))

	NewCatalogHandler(client, suggester, logger).RegisterRoutes(router)
	NewLocationHandler(sessions, staticGeocoder("Dizengoff 1, Tel Aviv"), logger).RegisterRoutes(router)
	NewCartHandler(sessions, logger).RegisterRoutes(router)
	NewProfileHandler(sessions, logger).RegisterRoutes(router)
	NewOrderHandler(sessions, tracker, logger).RegisterRoutes(router)
	NewAddressHandler(sessions, logger).RegisterRoutes(router)
	NewPushHandler(sessions, 3*time.Second, logger).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &gateway{server: srv, platform: platform, repo: repo}
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func login(t *testing.T, gw *gateway, browser *http.Client) {
	t.Helper()
	resp, body := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/auth/google",
		map[string]string{"token": "google-id-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
}

func TestMeRequiresLogin(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, _ := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginBindsSessionAndServesProfile(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, body := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/auth/google",
		map[string]string{"token": "google-id-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(body, &profile))
	require.NotNil(t, profile.User)
	assert.Equal(t, "u1", profile.User.PublicID)
	assert.False(t, profile.NeedsPhone)

	// The credential is bound server-side: a follow-up /api/me works
	// without the client ever seeing the platform cookie.
	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, "dana@example.com", profile.User.Email)
}

func TestPhonePromptClearsOnceProfileIsCompleted(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	gw.platform.mu.Lock()
	gw.platform.userPhone = ""
	gw.platform.mu.Unlock()

	resp, body := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/auth/google",
		map[string]string{"token": "google-id-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(body, &profile))
	require.NotNil(t, profile.User)
	assert.True(t, profile.NeedsPhone)

	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.True(t, profile.NeedsPhone)

	resp, body = doJSON(t, browser, http.MethodPut, gw.server.URL+"/api/profile",
		map[string]string{"phone": "0549876543"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.False(t, profile.NeedsPhone)

	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, "0549876543", profile.User.Phone)
	assert.False(t, profile.NeedsPhone)
}

func TestLoginRejectsMissingToken(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, _ := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/auth/google",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartRequiresLogin(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, _ := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/cart/items",
		map[string]interface{}{"product_id": "p1", "quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAddToCartReconcilesWithPlatform(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)
	login(t, gw, browser)

	resp, body := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/cart/items",
		map[string]interface{}{"product_id": "p1", "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var cart CartResponse
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, "c1", cart.CartID)
	assert.Equal(t, 20.0, cart.Subtotal)
}

func TestLogoutReturnsSessionToAnonymous(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)
	login(t, gw, browser)

	resp, _ := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrderCarriesPersistedReferralCode(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	// Land with a referral parameter: the middleware captures it for the
	// visitor before any login happens.
	resp, _ := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/products?r=PARTNER7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login(t, gw, browser)

	resp, body := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/cart/items",
		map[string]interface{}{"product_id": "p1", "quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/orders",
		map[string]interface{}{
			"address": map[string]interface{}{"city": "Tel Aviv", "street": "Dizengoff"},
			"phone":   "0541234567",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	gw.platform.mu.Lock()
	order := gw.platform.lastOrder
	gw.platform.mu.Unlock()

	require.NotNil(t, order)
	assert.Equal(t, "PARTNER7", order.AffiliateCode)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "0541234567", order.Phone)
}

func TestOrderWithoutBodyFromPlatformIsAGatewayError(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)
	login(t, gw, browser)

	resp, body := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/cart/items",
		map[string]interface{}{"product_id": "p1", "quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	gw.platform.mu.Lock()
	gw.platform.emptyOrderBody = true
	gw.platform.mu.Unlock()

	// The response must be a clean upstream error, not a dropped
	// connection.
	resp, _ = doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/orders",
		map[string]interface{}{
			"address": map[string]interface{}{"city": "Tel Aviv", "street": "Dizengoff"},
			"phone":   "0541234567",
		})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestOrderRejectsEmptyCart(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)
	login(t, gw, browser)

	resp, _ := doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/orders",
		map[string]interface{}{
			"address": map[string]interface{}{"city": "Tel Aviv", "street": "Dizengoff"},
			"phone":   "0541234567",
		})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductListing(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, body := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Products   []domain.Product   `json:"products"`
		Pagination *domain.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Products, 3)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 12, page.Pagination.PerPage)
}

func TestSuggestionsFilterAndMinLength(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	// Below the minimum length nothing is fetched.
	resp, body := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/search/suggestions?q=mo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Query    string           `json:"query"`
		Products []domain.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Empty(t, out.Products)

	// A long enough query is fetched and re-filtered by substring.
	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/search/suggestions?q=mozza", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Mozzarella Sticks", out.Products[0].Name)
}

func TestLocationSelectionLifecycle(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, body := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/location", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Location *LocationResponse `json:"location"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Nil(t, out.Location)

	resp, body = doJSON(t, browser, http.MethodPut, gw.server.URL+"/api/location",
		map[string]float64{"lat": 32.08, "long": 34.78})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Location)
	assert.Equal(t, "Dizengoff 1, Tel Aviv", out.Location.Address)
	assert.Equal(t, 32.08, out.Location.Lat)

	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/location", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Location)

	resp, _ = doJSON(t, browser, http.MethodDelete, gw.server.URL+"/api/location", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/location", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Nil(t, out.Location)
}

func TestPushDismissalIsSessionScoped(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, body := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/push/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status PushStatusResponse
	require.NoError(t, json.Unmarshal(body, &status))
	assert.False(t, status.Dismissed)
	assert.Equal(t, 3, status.PromptDelaySeconds)

	resp, _ = doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/push/dismiss", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/push/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.Dismissed)

	// A different browsing session starts undismissed.
	other := newBrowser(t)
	resp, body = doJSON(t, other, http.MethodGet, gw.server.URL+"/api/push/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &status))
	assert.False(t, status.Dismissed)
}

func TestPushSubscribeRelaysToPlatform(t *testing.T) {
	gw := newGateway(t)
	browser := newBrowser(t)

	resp, body := doJSON(t, browser, http.MethodGet, gw.server.URL+"/api/push/vapid-public-key", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var key struct {
		PublicKey string `json:"publicKey"`
	}
	require.NoError(t, json.Unmarshal(body, &key))
	assert.Equal(t, "BApplicationServerKey", key.PublicKey)

	resp, _ = doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/push/subscribe",
		map[string]interface{}{
			"endpoint": "https://push.example/s1",
			"keys":     map[string]string{"p256dh": "pk", "auth": "ak"},
		})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, browser, http.MethodPost, gw.server.URL+"/api/push/subscribe",
		map[string]interface{}{"keys": map[string]string{"p256dh": "pk", "auth": "ak"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "subscription without endpoint is rejected")
}
