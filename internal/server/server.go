package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/affiliate"
	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/geo"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/search"
	"storefront/internal/session"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	rdb    *redis.Client

	// Sessions is exposed for the periodic eviction loop.
	Sessions *session.Registry
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, rdb *redis.Client) *Server {
	// Platform client and session containers
	client := backend.New(cfg.Platform.BaseURL, cfg.Platform.Timeout, logger)
	store := session.NewStore(rdb, cfg.Session.TTL)
	registry := session.NewRegistry(client, cfg.Session.TTL, logger)
	sessions := &transport.Sessions{Registry: registry, Store: store, Logger: logger}

	// Affiliate attribution
	affiliateRepo := repository.NewAffiliateRepository(db)
	tracker := affiliate.NewTracker(affiliateRepo, logger)

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware([]string{cfg.Server.Origin}, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		KeyPrefix:         "rate_limit",
	}, logger))
	router.Use(custommiddleware.SessionMiddleware(cfg.Affiliate.CookieMaxAge, logger))
	router.Use(custommiddleware.AffiliateMiddleware(tracker, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Search suggestions
	suggester := search.NewSuggester(client, search.Config{
		Debounce:       cfg.Search.Debounce,
		MinLength:      cfg.Search.MinLength,
		MaxSuggestions: cfg.Search.MaxSuggestions,
	}, logger)

	// Reverse geocoding
	geocoder := geo.NewNominatimGeocoder(cfg.Geo.GeocoderURL, cfg.Geo.PositionTimeout, logger)

	// Register routes
	transport.NewCatalogHandler(client, suggester, logger).RegisterRoutes(router)
	transport.NewLocationHandler(sessions, geocoder, logger).RegisterRoutes(router)
	transport.NewCartHandler(sessions, logger).RegisterRoutes(router)
	transport.NewProfileHandler(sessions, logger).RegisterRoutes(router)
	transport.NewOrderHandler(sessions, tracker, logger).RegisterRoutes(router)
	transport.NewAddressHandler(sessions, logger).RegisterRoutes(router)
	transport.NewPushHandler(sessions, cfg.Push.PromptDelay, logger).RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		db:       db,
		rdb:      rdb,
		Sessions: registry,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close redis connection
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
