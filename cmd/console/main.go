package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/KrunalTTech03/rbac-console/internal/app"
	"github.com/KrunalTTech03/rbac-console/internal/auth"
	"github.com/KrunalTTech03/rbac-console/internal/backend"
	"github.com/KrunalTTech03/rbac-console/internal/catalog"
	"github.com/KrunalTTech03/rbac-console/internal/guard"
	"github.com/KrunalTTech03/rbac-console/internal/menu"
	"github.com/KrunalTTech03/rbac-console/internal/observability"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "console_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	api := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger).WithMetrics(metrics)
	api.OnAuthFailure(func(ctx context.Context) {
		sess := shared.SessionFromContext(ctx)
		if sess == nil {
			return
		}
		logger.Warn("backend rejected credentials, clearing session", slog.String("user", sess.UserID()))
		sess.Logout()
	})
	if err := api.Ping(ctx); err != nil {
		logger.Warn("backend ping", slog.Any("error", err))
	}

	g := guard.Guard{Logger: logger}

	authRepo := auth.NewRepository(api)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, g)

	menuRepo := menu.NewRepository(api)
	menuService := menu.NewService(menuRepo)
	menuHandler := menu.NewHandler(logger, menuService, g)

	catalogRepo := catalog.NewRepository(api)
	catalogService := catalog.NewService(catalogRepo, cfg.SearchDebounce)
	catalogHandler := catalog.NewHandler(logger, catalogService, g)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Guard:          g,
		AuthHandler:    authHandler,
		MenuHandler:    menuHandler,
		CatalogHandler: catalogHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
