// Package server wires handlers, middleware and routes together and owns
// the HTTP listener lifecycle. main.go stays minimal; everything that can
// be constructed from a Config happens here, in one composition root.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/patinho/quack-board/internal/auth"
	"github.com/patinho/quack-board/internal/executor"
	"github.com/patinho/quack-board/internal/handler"
	"github.com/patinho/quack-board/internal/middleware"
	sqliteRepo "github.com/patinho/quack-board/internal/repository/sqlite"
	"github.com/patinho/quack-board/internal/service"
	"github.com/patinho/quack-board/internal/storage"
)

// Config holds server configuration.
type Config struct {
	Port       int
	DBPath     string
	StorageDir string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router, the database connection and the avatar store.
// The database is closed during graceful shutdown so the WAL flushes and
// the file lock is released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database → services → handlers
// → routes. Each layer only receives what it needs; handlers never touch
// the database and services never touch HTTP. runner may be nil when the
// sandbox is unavailable.
func New(cfg Config, logger *slog.Logger, runner executor.Runner) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(runner); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Middleware order matters: RequestID and RealIP first so the logger sees
// them, then the logger, then Recoverer so panics still produce a 500
// with a log line.
func (s *Server) setupRoutes(runner executor.Runner) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	avatars, err := storage.NewAvatarStore(s.config.StorageDir)
	if err != nil {
		return fmt.Errorf("creating avatar store: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	questionService := service.NewQuestionService(s.db, s.db, s.logger)
	answerService := service.NewAnswerService(s.db, s.db, s.logger)
	statsService := service.NewStatsService(s.db, s.logger)
	profileService := service.NewProfileService(s.db, avatars, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	questionHandler := handler.NewQuestionHandler(questionService, s.logger)
	answerHandler := handler.NewAnswerHandler(answerService, s.logger)
	statsHandler := handler.NewStatsHandler(statsService, s.logger)
	userHandler := handler.NewUserHandler(profileService, questionService, s.logger)
	runHandler := handler.NewRunHandler(s.db, runner, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)
	optionalAuth := auth.OptionalAuth(tokens, s.db)

	// Avatars are served straight off the store directory.
	fileServer := http.FileServer(http.Dir(avatars.Dir()))
	s.router.Handle("/storage/*", http.StripPrefix("/storage/", fileServer))

	// OAuth routes live outside /api; they're browser redirects, not JSON.
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Get("/questions", questionHandler.HandleList)
		r.Get("/questions/{id}", questionHandler.HandleGet)
		r.Post("/questions/{id}/run", runHandler.HandleRun)

		// Anonymous voting is allowed; a session, when present, only
		// attributes the vote in the logs.
		r.With(optionalAuth).Patch("/answers/{id}/vote", answerHandler.HandleVote)

		r.Get("/stats", statsHandler.HandleStats)

		// Everything below needs a valid bearer token.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", authHandler.HandleMe)

			r.Post("/questions", questionHandler.HandleCreate)
			r.Post("/questions/{id}/answers", answerHandler.HandleCreate)
			r.Patch("/answers/{id}/accept", answerHandler.HandleAccept)

			r.Get("/users/{id}", userHandler.HandleGet)
			r.Get("/users/{id}/questions", userHandler.HandleListQuestions)
			r.Put("/users/me", userHandler.HandleUpdateProfile)
			r.Post("/users/me/avatar", userHandler.HandleUploadAvatar)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
