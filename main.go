package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UgurOz1/portfolyo/internal/auth"
	"github.com/UgurOz1/portfolyo/internal/blog"
	"github.com/UgurOz1/portfolyo/internal/config"
	"github.com/UgurOz1/portfolyo/internal/db"
	"github.com/UgurOz1/portfolyo/internal/handlers"
	"github.com/UgurOz1/portfolyo/internal/portfolio"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	profile, err := portfolio.Load(cfg.ProfilePath)
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		os.Exit(1)
	}

	authz := blog.NewAuthorizer(store, logger)
	svc := blog.NewService(store, authz, blog.DefaultSeed(), logger)
	google := auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if !google.Configured() {
		logger.Warn("google sign-in is not configured; writes stay disabled")
	}

	router := handlers.NewRouter(handlers.Deps{
		Service:            svc,
		Authz:              authz,
		Tokens:             auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL),
		Google:             google,
		Broker:             auth.NewBroker(),
		Profile:            profile,
		Logger:             logger,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
		FrontendURL:        cfg.FrontendURL,
		SecureCookies:      !cfg.Development(),
		RateLimitPublic:    cfg.RateLimitPublic,
		RateLimitLogin:     cfg.RateLimitLogin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port, "backend", cfg.StoreBackend, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (db.DocumentStore, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		store, err := db.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return store, nil

	case config.BackendSQLite:
		store, err := db.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		for _, uid := range cfg.AdminIDs {
			if err := store.GrantAdmin(ctx, uid); err != nil {
				store.Close()
				return nil, fmt.Errorf("grant admin %s: %w", uid, err)
			}
		}
		return store, nil

	case config.BackendFirestore:
		return db.NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile, logger)

	default:
		if len(cfg.AdminIDs) == 0 {
			logger.Warn("memory store has no admin grants; set ADMIN_IDS to enable writes")
		}
		return db.NewMemoryStore(logger, cfg.AdminIDs...), nil
	}
}
