package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"datadesk/m/internal/api"
	"datadesk/m/internal/auth"
	"datadesk/m/internal/config"
	"datadesk/m/internal/database"
	"datadesk/m/internal/migrations"
	"datadesk/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenAlgorithm, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	if cfg.AdminSeedPath != "" {
		if _, err := seed.LoadUsers(ctx, db, hasher, cfg.AdminSeedPath, logger); err != nil {
			log.Fatalf("seed users: %v", err)
		}
	}
	if cfg.EntrySeedPath != "" {
		if _, err := seed.LoadEntries(ctx, db, cfg.EntrySeedPath, logger); err != nil {
			logger.Error("seed data entries", "error", err)
		}
	}

	handler := api.New(db, tokens, hasher, logger, cfg.CORSOrigins)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("datadesk server starting", "addr", cfg.HTTPAddr, "config", cfg.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("datadesk server shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
