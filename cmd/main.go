package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/ZAKARYA123J/teamhub/config"
	"github.com/ZAKARYA123J/teamhub/db"
	"github.com/ZAKARYA123J/teamhub/handlers"
	"github.com/ZAKARYA123J/teamhub/middleware"
	"github.com/ZAKARYA123J/teamhub/notifications"
	"github.com/ZAKARYA123J/teamhub/ratelimit"
	"github.com/ZAKARYA123J/teamhub/repositories"
	api "github.com/ZAKARYA123J/teamhub/routes"
	"github.com/ZAKARYA123J/teamhub/services"
	"github.com/ZAKARYA123J/teamhub/storage"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	if err := run(cfg, logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Лимитер логина: redis, если задан REDIS_URL, иначе in-memory
	var limiter ratelimit.Limiter = ratelimit.NewInMemory(cfg.LoginRateWindow)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		limiter = ratelimit.NewRedis(client, cfg.LoginRateWindow, logger)
		logger.Info("redis login rate limiter enabled", slog.String("addr", opts.Addr))
	}

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		r2, err := storage.NewR2Uploader(context.Background(), storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		uploader = r2
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("Cloudflare R2 is not configured, photo upload disabled")
	}

	// Инициализация WebSocket Hub
	hub := notifications.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	accountRepo := repositories.NewPostgresAccountRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)

	tokens := services.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTTTL)
	notificationService := services.NewNotificationService(hub, logger)
	authService := services.NewAuthService(accountRepo, tokens, logger)
	adminService := services.NewAdminService(accountRepo, groupRepo, notificationService, logger)
	groupService := services.NewGroupService(groupRepo, playerRepo, accountRepo, uploader, notificationService, logger)
	playerService := services.NewPlayerService(playerRepo, groupRepo, uploader, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Deps{
		Logger:         logger,
		Authenticator:  middleware.NewAuthenticator(tokens, authService, logger),
		Limiter:        limiter,
		LoginRateLimit: cfg.LoginRateLimit,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Auth:           handlers.NewAuthHandler(authService, logger),
		Admin:          handlers.NewAdminHandler(adminService, logger),
		Groups:         handlers.NewGroupHandler(groupService, logger),
		Players:        handlers.NewPlayerHandler(playerService, logger),
		Coach:          handlers.NewCoachHandler(groupService, logger),
		Notifications: handlers.NewNotificationHandler(
			notificationService, hub, originChecker(cfg.CORSAllowedOrigins), logger,
		),
	})

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

// originChecker mirrors the CORS allow-list for websocket handshakes.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
