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

	"go-device-gateway/internal/config"
	"go-device-gateway/internal/database"
	"go-device-gateway/internal/ewelink"
	"go-device-gateway/internal/handler"
	"go-device-gateway/internal/middleware"
	"go-device-gateway/internal/repository"
	"go-device-gateway/internal/router"
	"go-device-gateway/internal/service"
	"go-device-gateway/internal/session"
	"go-device-gateway/web"
)

type App struct {
	server      *http.Server
	db          *database.DB
	openBrowser bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	var clientOpts []ewelink.Option
	if cfg.APIBaseURL != "" {
		clientOpts = append(clientOpts, ewelink.WithBaseURL(cfg.APIBaseURL))
	}
	client := ewelink.New(cfg.AppID, cfg.AppSecret, clientOpts...)

	credentialRepo := repository.NewCredentialRepository(db.Conn)
	binder := session.NewBinder(cfg.SessionSecret, cfg.SessionTTL)
	sessionMiddleware := middleware.NewSessionMiddleware(binder)

	tokenService := service.NewTokenService(credentialRepo, client)
	deviceService := service.NewDeviceService(client)
	timerService := service.NewTimerService(client)

	appRouter := router.New(cfg, sessionMiddleware, router.Handlers{
		Auth:   handler.NewAuthHandler(client, tokenService, binder, cfg.RedirectURL, cfg.Region),
		Device: handler.NewDeviceHandler(tokenService, deviceService),
		Timer:  handler.NewTimerHandler(tokenService, timerService),
		Static: handler.NewStaticHandler(web.Index),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db, openBrowser: cfg.OpenBrowser}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	localURL := fmt.Sprintf("http://127.0.0.1%s/", a.server.Addr)
	slog.Info("gateway ready", "url", localURL, "login", localURL+"login")

	if a.openBrowser {
		go func() {
			time.Sleep(3 * time.Second)
			if err := openBrowser(localURL); err != nil {
				slog.Warn("could not open browser", "error", err.Error())
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := a.db.Close(); err != nil {
		slog.Warn("closing credential store failed", "error", err.Error())
	}

	slog.Info("server stopped")
	return nil
}
