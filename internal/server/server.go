// Package server is the composition root of the entity store: it opens the
// configured backend, wires repository → service → handler, mounts the
// routes and runs the HTTP server until a shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/sakif/samewave/internal/auth"
	"github.com/sakif/samewave/internal/catalog"
	"github.com/sakif/samewave/internal/config"
	"github.com/sakif/samewave/internal/handler"
	"github.com/sakif/samewave/internal/middleware"
	"github.com/sakif/samewave/internal/repository"
	"github.com/sakif/samewave/internal/repository/jsonfile"
	sqliteRepo "github.com/sakif/samewave/internal/repository/sqlite"
	"github.com/sakif/samewave/internal/service"
)

// Server owns the store and the optional Redis client; both are closed
// when Start returns or Close is called.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
	redis  *redis.Client
}

// New opens the store selected by cfg.Store.Driver and builds the router.
// The search proxy uses searcher when non-nil, otherwise a gateway built
// from cfg.Catalog.
func New(cfg config.Config, searcher catalog.Searcher, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(searcher); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func openStore(cfg config.StoreConfig, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil
	case "json", "":
		store, err := jsonfile.New(cfg.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("opening data directory: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// setupRoutes wires the dependency graph. Middleware order: request id,
// real IP, panic recovery, request logging, CORS, then bearer tokens.
//
//	GET    /api/threads
//	POST   /api/threads
//	GET    /api/suggestions
//	POST   /api/suggestions
//	PATCH  /api/suggestions/{id}/upvote
//	POST   /api/auth/signup
//	POST   /api/auth/login
//	GET    /api/auth/me
//	GET    /api/health
//	GET    /api/search
func (s *Server) setupRoutes(searcher catalog.Searcher) error {
	var tokens *auth.TokenService
	if s.config.Auth.JWTSecret != "" {
		ts, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		tokens = ts
	} else {
		s.logger.Warn("auth.jwt_secret not set, signup and login return no token")
	}

	authService := service.NewAuthService(s.store, tokens, auth.NewPasswordService(), s.logger)
	if s.config.Store.SeedDemoUsers {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := authService.SeedDemoUsers(ctx, service.DemoUsers); err != nil {
			return fmt.Errorf("seeding demo users: %w", err)
		}
	}

	if searcher == nil {
		gw, err := catalog.New(s.config.Catalog, nil, s.logger)
		if err != nil {
			return fmt.Errorf("creating catalog gateway: %w", err)
		}
		searcher = gw
		if s.config.Redis.URL != "" {
			client, err := s.openRedis()
			if err != nil {
				s.logger.Warn("search cache disabled", slog.String("error", err.Error()))
			} else {
				s.redis = client
				searcher = catalog.NewCached(gw, client, s.config.Catalog.CacheTTL, s.logger)
			}
		}
	}

	threadHandler := handler.NewThreadHandler(service.NewThreadService(s.store, s.logger), s.logger)
	suggestionHandler := handler.NewSuggestionHandler(service.NewSuggestionService(s.store, s.logger), s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	searchHandler := handler.NewSearchHandler(searcher, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORS.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.router.Use(auth.OptionalAuth(tokens))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/threads", threadHandler.HandleList)
		r.Post("/threads", threadHandler.HandleCreate)

		r.Get("/suggestions", suggestionHandler.HandleList)
		r.Post("/suggestions", suggestionHandler.HandleCreate)
		r.Patch("/suggestions/{id}/upvote", suggestionHandler.HandleUpvote)

		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/me", authHandler.HandleMe)

		r.Get("/health", handler.HandleHealth)
		r.Get("/search", searchHandler.HandleSearch)
	})

	return nil
}

func (s *Server) openRedis() (*redis.Client, error) {
	opts, err := redis.ParseURL(s.config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store and the Redis client.
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

// Start serves until SIGINT or SIGTERM, then gives in-flight requests 30s
// to finish before closing the store.
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
			slog.String("url", fmt.Sprintf("http://localhost:%d/api", s.config.Port)),
			slog.String("store", s.config.Store.Driver),
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
