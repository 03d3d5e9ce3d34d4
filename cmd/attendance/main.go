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

	"github.com/Srikarsmile/HRUPDATED/internal/config"
	delivery "github.com/Srikarsmile/HRUPDATED/internal/delivery/http"
	"github.com/Srikarsmile/HRUPDATED/internal/delivery/http/middleware"
	"github.com/Srikarsmile/HRUPDATED/internal/infrastructure/memory"
	"github.com/Srikarsmile/HRUPDATED/internal/infrastructure/postgres"
	"github.com/Srikarsmile/HRUPDATED/internal/infrastructure/redis"
	"github.com/Srikarsmile/HRUPDATED/internal/locationtoken"
	"github.com/Srikarsmile/HRUPDATED/internal/logging"
	"github.com/Srikarsmile/HRUPDATED/internal/usecase"
	"github.com/Srikarsmile/HRUPDATED/internal/worker"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// store объединяет репозитории, которые реализуют и postgres, и memory.
type store interface {
	usecase.EventRepository
	usecase.DisconnectRepository
	usecase.DayRepository
	delivery.Pinger
}

func main() {
	// Загружаем .env (опционально)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or failed to load, relying on environment variables")
	}

	// 1. Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// 2. Разбор офисной сети и геозон один раз при старте
	allowlist, err := usecase.ParseAllowlist(cfg.OfficeIPs)
	if err != nil {
		fatal(logger, "invalid OFFICE_IPS", err)
	}
	fences, err := usecase.ParseGeofences(cfg.OfficeGeo, cfg.OfficeLat, cfg.OfficeLng, cfg.OfficeRadiusM, cfg.DefaultFenceRadiusM)
	if err != nil {
		fatal(logger, "invalid geofence configuration", err)
	}
	if len(fences) == 0 {
		logger.Warn("no office geofence configured, gps punches will be rejected")
	}
	if allowlist.Len() == 0 {
		logger.Warn("OFFICE_IPS is empty, wifi punches will be rejected")
	}

	// 3. Хранилище
	var (
		repo     store
		dbPinger delivery.Pinger
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pgRepo, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			fatal(logger, "failed to connect to postgres", err)
		}
		defer pgRepo.Close()
		if err := pgRepo.Migrate(context.Background()); err != nil {
			fatal(logger, "failed to migrate schema", err)
		}
		repo, dbPinger = pgRepo, pgRepo
	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		repo = memory.New()
	}

	// 4. Redis: очередь уведомлений и ограничитель частоты (если настроен)
	var (
		queue       usecase.QueueRepository
		limiter     middleware.RateLimiter
		redisPinger delivery.Pinger
	)
	if cfg.RedisAddr != "" {
		redisRepo, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			fatal(logger, "failed to connect to redis", err)
		}
		defer redisRepo.Close()
		queue, limiter, redisPinger = redisRepo, redisRepo, redisRepo
	} else {
		queue, limiter = memory.NewQueue(), memory.NewLimiter()
	}
	if !cfg.RateLimitEnabled {
		limiter = nil
	}
	if cfg.HalfDayWebhookURL == "" {
		queue = nil
	}

	// 5. Сервисы
	signer := locationtoken.New(cfg.GeoTokenSecret)
	halfDay := usecase.NewHalfDayPolicy(repo, repo, queue, cfg.HalfDayThreshold, logger)
	punches := usecase.NewPunchService(repo, halfDay, signer, usecase.PunchRules{
		Allowlist:      allowlist,
		Fences:         fences,
		RequireProof:   cfg.RequireGeoToken,
		MaxProofDriftM: cfg.GeoTokenMaxDriftM,
		ReasonMinLen:   cfg.ManualReasonMinLen,
	}, logger)
	disconnects := usecase.NewDisconnectService(repo, halfDay, logger)
	attendance := usecase.NewAttendanceService(repo, repo, repo, logger)
	presence := usecase.NewPresenceService(allowlist, fences, signer, cfg.GeoTokenTTL, logger)

	// 6. Воркер уведомлений
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if queue != nil {
		w := worker.New(queue, cfg.HalfDayWebhookURL, logger)
		go w.Start(workerCtx)
	}

	// 7. HTTP
	var resolver middleware.IdentityResolver
	if cfg.AuthMode == config.AuthModeJWT {
		resolver = middleware.NewJWTResolver(cfg.JWTSecret, cfg.JWTAudience)
	} else {
		resolver = middleware.NewIPResolver(cfg.HRAddresses(), cfg.EmployeeAddresses())
	}

	handler := delivery.NewHandler(delivery.Dependencies{
		Punches:        punches,
		Disconnects:    disconnects,
		Attendance:     attendance,
		Presence:       presence,
		Identity:       resolver,
		Limiter:        limiter,
		DBPinger:       dbPinger,
		RedisPinger:    redisPinger,
		TrustedProxies: cfg.TrustedProxyList(),
		Logger:         logger,
	})
	var router http.Handler = handler.InitRoutes()
	if origins := cfg.CORSOriginList(); len(origins) > 0 {
		router = cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler(router)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.HTTPPort, "storage", cfg.StorageDriver, "auth", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "listen failed", err)
		}
	}()

	// 8. Graceful Shutdown (Плавное завершение)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	workerCancel() // Останавливаем воркер

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exiting")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
