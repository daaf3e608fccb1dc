// Package server wires handlers, middleware and routes, and runs the HTTP
// server with graceful shutdown.
//
// DEPENDENCY FLOW:
//
//	main builds:   sqlstore.Store, imagestore.Store, cache.RedisCache (optional)
//	server.New:    store -> ProfileService / LikeService -> handlers -> routes
//
// The server owns every resource it is given and closes them on shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/matchboard/internal/cache"
	"github.com/sakif/matchboard/internal/config"
	"github.com/sakif/matchboard/internal/handler"
	"github.com/sakif/matchboard/internal/imagestore"
	"github.com/sakif/matchboard/internal/middleware"
	"github.com/sakif/matchboard/internal/repository"
	"github.com/sakif/matchboard/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Database is everything the server needs from storage.
// *sqlstore.Store implements it.
type Database interface {
	repository.UserRepository
	repository.LikeRepository
	repository.Pinger
	Close() error
}

// Deps are the long-lived resources built by main.
type Deps struct {
	DB     Database
	Images imagestore.Store
	Cache  *cache.RedisCache // nil disables the like-count cache
}

// Server is the HTTP server and the resources it owns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	deps   Deps
}

// New builds the router. It never touches the network.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes registers middleware and routes.
//
// ROUTES:
//
//	POST /upload        -> create profile (multipart)
//	GET  /users         -> list profiles for ?email=
//	POST /like          -> append a like
//	GET  /likes/count   -> likes received by ?email=
//	GET  /healthz       -> database health
//	GET  /uploads/*     -> stored images
//	GET  /*             -> static assets (no directory listings)
//
// chi matches static segments before the catch-all, so the API routes are
// never shadowed by files in the static directory.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.CORSOrigins))

	// Keep a nil *RedisCache from becoming a non-nil interface.
	var counter service.LikeCounter
	if s.deps.Cache != nil {
		counter = s.deps.Cache
	}

	profileService := service.NewProfileService(s.deps.DB, s.deps.Images, s.config.ListMode, s.logger)
	likeService := service.NewLikeService(s.deps.DB, counter, s.logger)

	profileHandler := handler.NewProfileHandler(profileService, s.config.Images.MaxUploadBytes, s.logger)
	likeHandler := handler.NewLikeHandler(likeService, s.logger)
	healthHandler := handler.NewHealthHandler(s.deps.DB, s.logger)

	s.router.Post("/upload", profileHandler.HandleUpload)
	s.router.Get("/users", profileHandler.HandleListUsers)
	s.router.Post("/like", likeHandler.HandleLike)
	s.router.Get("/likes/count", likeHandler.HandleLikeCount)
	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Handle("/uploads/*", http.StripPrefix("/uploads", s.deps.Images.Handler()))
	s.router.Handle("/*", staticHandler(s.config.StaticDir))
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30s and closes the database pool and cache.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("db_driver", s.config.DB.Driver),
			slog.String("list_mode", s.config.ListMode),
			slog.String("image_store", s.config.Images.Store),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Close releases the database pool and the cache client.
func (s *Server) Close() error {
	var errs []error
	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing cache: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("error releasing resources", slog.String("error", err.Error()))
		return err
	}
	return nil
}
