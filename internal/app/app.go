package app

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

	"go-auth-dashboard/internal/apiclient"
	"go-auth-dashboard/internal/config"
	"go-auth-dashboard/internal/event"
	"go-auth-dashboard/internal/handler"
	"go-auth-dashboard/internal/metrics"
	"go-auth-dashboard/internal/router"
	"go-auth-dashboard/internal/service"
	"go-auth-dashboard/internal/session"
	"go-auth-dashboard/internal/websocket"
)

type App struct {
	server       *http.Server
	provider     *service.SessionProvider
	cleanupFuncs []func()
}

// New wires the web front: session store, request pipeline, clients,
// provider, websocket hub and router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	driver, err := session.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	store := session.NewStore(driver)
	session.LogDriver(cfg)

	sess := session.New(store)
	m := metrics.New()

	transport := apiclient.NewAuthTransport(cfg.APIBaseURL, sess, apiclient.WithMetrics(m))
	api := apiclient.New(cfg.APIBaseURL, transport, cfg.RequestTimeout)

	bus := event.NewBus()
	provider := service.NewSessionProvider(
		service.NewAuthClient(api, sess),
		service.NewProfileClient(api, sess),
		bus,
	)
	transport.OnSessionExpired(provider.HandleSessionExpired)
	transport.OnSessionExpired(func() {
		slog.Info("session expired; signed out")
	})

	hub := websocket.NewHub(bus)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	pages, err := handler.ParsePages()
	if err != nil {
		hubCancel()
		_ = store.Close()
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	appRouter := router.New(cfg, provider, router.Handlers{
		Auth:      handler.NewAuthHandler(provider, pages),
		Dashboard: handler.NewDashboardHandler(provider, pages, service.NewAvatarService()),
		Session:   handler.NewSessionHandler(provider, cfg.SessionDriver),
	}, hub, m)

	provider.Init(ctx)
	slog.Info("session restored", "authenticated", provider.IsAuthenticated(), "api_base_url", cfg.APIBaseURL)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:   server,
		provider: provider,
		cleanupFuncs: []func(){
			hubCancel,
			func() {
				if err := store.Close(); err != nil {
					slog.Warn("failed to close session store", "error", err)
				}
			},
		},
	}, nil
}

// Handler exposes the routed handler for in-process tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Provider() *service.SessionProvider {
	return a.provider
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return a.Shutdown()
}

// Shutdown stops accepting requests, then releases the hub and the store.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
