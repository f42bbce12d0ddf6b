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

	"github.com/Dosada05/ttleague/brackets"
	"github.com/Dosada05/ttleague/config"
	"github.com/Dosada05/ttleague/db"
	"github.com/Dosada05/ttleague/handlers"
	"github.com/Dosada05/ttleague/repositories"
	api "github.com/Dosada05/ttleague/routes"
	"github.com/Dosada05/ttleague/services"
	"github.com/Dosada05/ttleague/storage"
	"github.com/go-chi/chi/v5"
	"github.com/lmittmann/tint"
)

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == "text" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel, TimeFormat: time.Kitchen}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("strict_categories", cfg.StrictCategories),
		slog.Bool("archive_enabled", cfg.Archive.Enabled()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, db.DefaultPool)
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

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}

	// Хранилище архивов (S3 совместимое), опционально
	var uploader storage.FileUploader
	if cfg.Archive.Enabled() {
		uploader, err = storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			BucketName:      cfg.Archive.BucketName,
			PublicBaseURL:   cfg.Archive.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize archive uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("archive uploader initialized", slog.String("bucket", cfg.Archive.BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	// Инициализация репозиториев
	transactor := repositories.NewPostgresTransactor(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)

	// Инициализация сервисов
	categories := services.CategoryPolicy{Strict: cfg.StrictCategories, Allowed: cfg.AllowedCategories}
	rankingService := services.NewRankingService(rankingRepo, playerRepo, logger)
	playerService := services.NewPlayerService(playerRepo, categories, logger)
	tournamentService := services.NewTournamentService(transactor, tournamentRepo, playerRepo, matchRepo, categories, logger)
	bracketService := services.NewBracketService(transactor, tournamentRepo, playerRepo, matchRepo, rankingService, wsHub, logger)
	matchService := services.NewMatchService(transactor, matchRepo, tournamentRepo, rankingService, wsHub, logger)
	archiveService := services.NewArchiveService(tournamentRepo, matchRepo, uploader, cfg.Archive.BatchSize, logger)

	if uploader != nil {
		scheduler, err := services.StartArchiveScheduler(ctx, archiveService, cfg.Archive.Interval, logger)
		if err != nil {
			logger.Error("failed to start archive scheduler", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.Error("archive scheduler shutdown failed", slog.Any("error", err))
			}
		}()
		logger.Info("archive scheduler started", slog.Duration("interval", cfg.Archive.Interval))
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router,
		api.Options{
			JWTSecretKey:   cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
		},
		api.Handlers{
			Health:     handlers.NewHealthHandler(dbConn),
			Player:     handlers.NewPlayerHandler(playerService),
			Tournament: handlers.NewTournamentHandler(tournamentService),
			Bracket:    handlers.NewBracketHandler(bracketService, archiveService),
			Match:      handlers.NewMatchHandler(matchService),
			Ranking:    handlers.NewRankingHandler(rankingService),
			WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins),
		},
	)

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		// Stops the hub, which closes websocket clients, and cancels running archive jobs.
		stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
