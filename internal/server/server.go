// Package server is the composition root: it opens the key/value medium,
// builds the stores in dependency order, wires services and handlers to
// routes, and runs the HTTP server with graceful shutdown.
//
// CONSTRUCTION ORDER:
//
//	kv (prefixed) → SessionStore → PropertyStore → DirectoryStore (subscribes
//	to the session) → SessionStore.Restore
//
// Restoring last means a session persisted by a previous run reaches the
// directory through the same user_login event as a fresh login.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/truassets/internal/auth"
	"github.com/sakif/truassets/internal/config"
	"github.com/sakif/truassets/internal/handler"
	"github.com/sakif/truassets/internal/kv"
	"github.com/sakif/truassets/internal/kv/postgres"
	"github.com/sakif/truassets/internal/kv/redis"
	"github.com/sakif/truassets/internal/kv/s3"
	"github.com/sakif/truassets/internal/kv/sqlite"
	"github.com/sakif/truassets/internal/metrics"
	"github.com/sakif/truassets/internal/middleware"
	"github.com/sakif/truassets/internal/service"
	"github.com/sakif/truassets/internal/store"
)

// Server owns the stores and the connection to the key/value medium, and
// closes both on shutdown.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	metrics *metrics.Registry

	kv       kv.Store
	sessions *store.SessionStore
	props    *store.PropertyStore
	dir      *store.DirectoryStore
}

// New opens the medium named by cfg.KVDriver and builds the server on it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	backend, err := OpenKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewWithStore(ctx, cfg, backend, logger)
	if err != nil {
		closeKV(backend, logger)
		return nil, err
	}
	return s, nil
}

// OpenKV connects to the configured backend.
func OpenKV(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.KVDriver {
	case config.DriverMemory:
		return kv.NewMemory(), nil
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite kv: %w", err)
		}
		return db, nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres kv: %w", err)
		}
		return db, nil
	case config.DriverRedis:
		rs, err := redis.New(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("opening redis kv: %w", err)
		}
		return rs, nil
	case config.DriverS3:
		bs, err := s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("opening s3 kv: %w", err)
		}
		return bs, nil
	default:
		return nil, fmt.Errorf("unknown kv driver %q", cfg.KVDriver)
	}
}

// NewWithStore builds the server on an already open medium. The server
// takes ownership of backend and closes it on shutdown if it is a kv.Closer.
func NewWithStore(ctx context.Context, cfg config.Config, backend kv.Store, logger *slog.Logger) (*Server, error) {
	reg := metrics.New()
	opts := store.Options{Logger: logger, Metrics: reg, PersistEmpty: cfg.PersistEmpty}
	prefixed := kv.WithPrefix(backend, cfg.KVPrefix)

	sessions := store.NewSessionStore(prefixed, opts)
	props := store.NewPropertyStore(ctx, prefixed, opts)
	dir := store.NewDirectoryStore(ctx, prefixed, sessions, opts)
	sessions.Restore(ctx)

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		metrics:  reg,
		kv:       backend,
		sessions: sessions,
		props:    props,
		dir:      dir,
	}
	if err := s.setupRoutes(); err != nil {
		dir.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes wires middleware and handlers.
//
// MIDDLEWARE ORDER:
//  1. RequestID (the logger reads it)
//  2. RealIP
//  3. Logger (logs and records metrics for every request)
//  4. Recoverer (a panic becomes a 500 that is still logged)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger, s.metrics))
	s.router.Use(chimiddleware.Recoverer)

	secret := s.config.JWTSecret
	if secret == "" {
		var err error
		if secret, err = randomSecret(); err != nil {
			return err
		}
		s.logger.Warn("JWT_SECRET not set: using a per-process secret, sessions need a new login after restart")
	}
	tokens, err := auth.NewTokenService(secret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	admin, err := auth.NewAdminAuthenticator(s.config.AdminEmail, s.config.AdminPassword, auth.NewPasswordService())
	if err != nil {
		return fmt.Errorf("creating admin authenticator: %w", err)
	}
	var google *auth.GoogleProvider
	if s.config.GoogleEnabled() {
		google = auth.NewGoogleProvider(s.config.GoogleClientID, s.config.GoogleClientSecret, s.config.GoogleCallbackURL)
	} else {
		s.logger.Warn("Google sign-in not configured: development login enabled")
	}

	authService := service.NewAuthService(s.sessions, tokens, admin, google, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.config.SecureCookies, s.logger)
	propertyHandler := handler.NewPropertyHandler(service.NewPropertyService(s.props, s.logger), s.logger)
	userHandler := handler.NewUserHandler(service.NewDirectoryService(s.dir, s.logger), s.logger)
	reportHandler := handler.NewReportHandler(service.NewReportService(s.props, s.logger), s.logger)

	s.router.Handle("/metrics", s.metrics.Handler())
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	requireAuth := auth.RequireAuth(tokens, s.sessions)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/admin/login", authHandler.HandleAdminLogin)
		r.Post("/google/credential", authHandler.HandleGoogleCredential)
		r.Get("/google/login", authHandler.HandleGoogleLogin)
		r.Get("/google/callback", authHandler.HandleGoogleCallback)
		r.Post("/dev/login", authHandler.HandleDevLogin)
		r.With(requireAuth).Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/properties", propertyHandler.HandleList)
		r.Get("/properties/featured", propertyHandler.HandleFeatured)
		r.Get("/properties/stats", propertyHandler.HandleStats)
		r.Get("/properties/{id}", propertyHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Post("/properties", propertyHandler.HandleCreate)
				r.Patch("/properties/{id}", propertyHandler.HandleUpdate)
				r.Delete("/properties/{id}", propertyHandler.HandleDelete)

				r.Get("/users", userHandler.HandleList)
				r.Get("/users/stats", userHandler.HandleStats)
				r.Post("/users", userHandler.HandleCreate)
				r.Get("/users/{id}", userHandler.HandleGet)
				r.Patch("/users/{id}", userHandler.HandleUpdate)
				r.Delete("/users/{id}", userHandler.HandleDelete)
				r.Post("/users/{id}/{action}", userHandler.HandleModerate)

				r.Get("/reports", reportHandler.HandleReport)
				r.Get("/reports/export", reportHandler.HandleExport)
				r.Get("/analytics", reportHandler.HandleAnalytics)
			})
		})
	})
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30s and closes the stores and the medium.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("kv", s.config.KVDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close detaches the directory from the session and closes the medium.
func (s *Server) Close() {
	s.dir.Close()
	closeKV(s.kv, s.logger)
}

func closeKV(backend kv.Store, logger *slog.Logger) {
	c, ok := backend.(kv.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Error("closing kv store", slog.String("error", err.Error()))
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
