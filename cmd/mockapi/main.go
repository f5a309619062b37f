package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-auth-dashboard/internal/config"
	"go-auth-dashboard/internal/logger"
	"go-auth-dashboard/internal/mockapi"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	svc := mockapi.NewService(mockapi.Options{
		JWTSecret:  cfg.MockAPIJWTSecret,
		AccessTTL:  cfg.MockAPIAccessTTL,
		RefreshTTL: cfg.MockAPIRefreshTTL,
	})
	if _, err := svc.Seed(demoEmail, demoPassword, "Demo", "User"); err != nil {
		slog.Error("failed to seed demo account", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.MockAPIPort,
		Handler:           mockapi.NewRouter(svc),
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	go func() {
		slog.Info("mock auth API starting", "addr", server.Addr, "demo_email", demoEmail, "access_ttl", cfg.MockAPIAccessTTL)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("mock auth API failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("mock auth API stopped")
}
