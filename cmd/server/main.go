// Package main is the entry point for the board server. It reads
// configuration from the environment, builds the logger and the optional
// Docker sandbox, and hands everything to internal/server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/patinho/quack-board/internal/auth"
	"github.com/patinho/quack-board/internal/executor"
	"github.com/patinho/quack-board/internal/executor/docker"
	"github.com/patinho/quack-board/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// DB_PATH overrides the default for deployments, e.g.
	// DB_PATH=/var/lib/quack-board/prod.db
	dbPath := "data/board.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	storageDir := "data/storage"
	if envDir := os.Getenv("STORAGE_DIR"); envDir != "" {
		storageDir = envDir
	}

	// JWT_SECRET must be a long random string, e.g.
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	tokenTTL := auth.DefaultTokenTTL
	if envTTL := os.Getenv("JWT_TTL"); envTTL != "" {
		d, err := time.ParseDuration(envTTL)
		if err != nil {
			logger.Error("invalid JWT_TTL value", slog.String("value", envTTL))
			os.Exit(1)
		}
		tokenTTL = d
	}

	bcryptCost := auth.DefaultCost
	if envCost := os.Getenv("BCRYPT_COST"); envCost != "" {
		c, err := strconv.Atoi(envCost)
		if err != nil {
			logger.Error("invalid BCRYPT_COST value", slog.String("value", envCost))
			os.Exit(1)
		}
		bcryptCost = c
	}

	githubClientID := os.Getenv("GITHUB_CLIENT_ID")
	githubClientSecret := os.Getenv("GITHUB_CLIENT_SECRET")
	githubCallbackURL := os.Getenv("GITHUB_CALLBACK_URL")
	if githubCallbackURL == "" {
		githubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	// The Docker sandbox is optional: without it the server still starts
	// and snippet runs answer 503.
	var runner executor.Runner
	dockerRunner, err := docker.New(docker.DefaultConfig(), logger)
	if err != nil {
		logger.Warn("Docker sandbox unavailable, snippet runs are disabled",
			slog.String("error", err.Error()),
		)
	} else {
		runner = dockerRunner
		defer dockerRunner.Close()
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		StorageDir:         storageDir,
		JWTSecret:          jwtSecret,
		TokenTTL:           tokenTTL,
		BcryptCost:         bcryptCost,
		GitHubClientID:     githubClientID,
		GitHubClientSecret: githubClientSecret,
		GitHubCallbackURL:  githubCallbackURL,
	}

	srv, err := server.New(cfg, logger, runner)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
