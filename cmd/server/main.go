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

	"github.com/Dosada05/poker-club/broadcast"
	"github.com/Dosada05/poker-club/config"
	"github.com/Dosada05/poker-club/db"
	"github.com/Dosada05/poker-club/handlers"
	"github.com/Dosada05/poker-club/metrics"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/routes"
	"github.com/Dosada05/poker-club/services"
	"github.com/Dosada05/poker-club/storage"
	"github.com/go-chi/chi/v5"
)

// @title						Poker Club API
// @version					1.0
// @description				Турниры покерного клуба: результаты, очки и рейтинг игроков.
// @BasePath					/api
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	bootLogger := config.NewLogger(os.Stderr, "info")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbConn, logger); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Хранилище файлов: R2, если настроено, иначе загрузки отключены
	uploader := storage.NewDisabledUploader()
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("Cloudflare R2 is not configured, image uploads are disabled")
	}

	appMetrics := metrics.NewService()

	// WebSocket Hub
	hub := broadcast.NewHub(logger)
	go hub.Run(ctx)
	notifier := broadcast.NewNotifier(hub, appMetrics)
	logger.Info("WebSocket hub started")

	// Репозитории
	tx := repositories.NewTransactor(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participationRepo := repositories.NewPostgresParticipationRepository(dbConn)
	statsRepo := repositories.NewPostgresStatisticsRepository(dbConn)
	auditRepo := repositories.NewPostgresAuditLogRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	healthRepo := repositories.NewPostgresHealthRepository(dbConn)

	// Сервисы
	recalculator := services.NewRecalculator(tx, playerRepo, tournamentRepo, participationRepo, statsRepo, appMetrics, logger)
	auditService := services.NewAuditService(auditRepo, logger)
	healthService := services.NewHealthService(healthRepo, logger)
	authService := services.NewAuthService(userRepo, logger)
	playerService := services.NewPlayerService(
		tx,
		playerRepo,
		participationRepo,
		statsRepo,
		recalculator,
		healthService,
		auditService,
		uploader,
		notifier,
		logger,
	)
	tournamentService := services.NewTournamentService(
		tx,
		tournamentRepo,
		participationRepo,
		recalculator,
		auditService,
		uploader,
		notifier,
		logger,
	)
	participationService := services.NewParticipationService(
		tx,
		playerRepo,
		tournamentRepo,
		participationRepo,
		recalculator,
		healthService,
		auditService,
		notifier,
		logger,
	)
	statisticsService := services.NewStatisticsService(playerRepo, tournamentRepo, participationRepo, statsRepo)
	logger.Info("services initialized")

	// HTTP-обработчики
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, cfg.JWTSecretKey, cfg.TokenTTL, logger),
		Player:        handlers.NewPlayerHandler(playerService, logger),
		Tournament:    handlers.NewTournamentHandler(tournamentService, logger),
		Participation: handlers.NewParticipationHandler(participationService, logger),
		Statistics:    handlers.NewStatisticsHandler(statisticsService, logger),
		Admin:         handlers.NewAdminHandler(auditService, healthService, logger),
		WebSocket:     handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, logger),
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, h, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        appMetrics,
		MetricsHandler: metrics.NewMetricsHandler(),
	})
	logger.Info("routes configured")

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
