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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/Dosada05/sports-center/cache"
	"github.com/Dosada05/sports-center/config"
	"github.com/Dosada05/sports-center/db"
	"github.com/Dosada05/sports-center/events"
	"github.com/Dosada05/sports-center/handlers"
	"github.com/Dosada05/sports-center/middleware"
	"github.com/Dosada05/sports-center/models"
	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/repositories"
	api "github.com/Dosada05/sports-center/routes"
	"github.com/Dosada05/sports-center/services"
	"github.com/Dosada05/sports-center/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Sports Center API
// @version 1.0
// @description Reservas de instalaciones deportivas y torneos.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("timezone", cfg.TimeZone))

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBPingTimeout)
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

	if cfg.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(migrateCtx, dbConn)
		cancel()
		if err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("database schema applied")
	}

	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("redis unavailable, availability cache and rate limiting disabled")
	}
	availabilityCache := cache.NewAvailabilityCache(redisClient, cfg.AvailabilityTTL, logger)

	publisher := events.NewNopPublisher()
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("failed to connect to message broker, domain events disabled", slog.Any("error", err))
		} else {
			publisher = amqpPublisher
			logger.Info("message broker connected", slog.String("exchange", cfg.AMQPExchange))
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.Any("error", err))
		}
	}()

	uploader := storage.NewDisabledUploader()
	if cfg.R2Enabled() {
		r2Uploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
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
		uploader = r2Uploader
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 credentials missing, facility image uploads disabled")
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket hub started")

	clock := services.NewClock(cfg.Location())

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	facilityRepo := repositories.NewPostgresFacilityRepository(dbConn)
	reservationRepo := repositories.NewPostgresReservationRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	enrollmentRepo := repositories.NewPostgresEnrollmentRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	transactor := repositories.NewTransactor(dbConn)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.TokenTTL, clock, logger)
	facilityService := services.NewFacilityService(facilityRepo, reservationRepo, availabilityCache, uploader, clock, logger)
	reservationService := services.NewReservationService(
		reservationRepo,
		facilityRepo,
		transactor,
		availabilityCache,
		wsHub,
		publisher,
		clock,
		logger,
	)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		enrollmentRepo,
		transactor,
		wsHub,
		publisher,
		clock,
		logger,
	)
	membershipService := services.NewMembershipService(userRepo, publisher, clock, models.NewMoney(cfg.MembershipFee()), logger)
	adminService := services.NewAdminService(statsRepo, reservationRepo, enrollmentRepo, clock, logger)
	paymentProcessor := services.NewSimulatedPaymentProcessor(logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Facility:    handlers.NewFacilityHandler(facilityService),
		Reservation: handlers.NewReservationHandler(reservationService),
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Membership:  handlers.NewMembershipHandler(membershipService),
		Payment:     handlers.NewPaymentHandler(paymentProcessor),
		Admin:       handlers.NewAdminHandler(adminService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, facilityService, tournamentService, cfg.CORSOrigins, logger),
	}, api.Options{
		Resolver:    authService,
		CORSOrigins: cfg.CORSOrigins,
		Redis:       redisClient,
		RateLimit: middleware.RateLimitConfig{
			Capacity:        cfg.RateLimitCapacity,
			RefillPerSecond: cfg.RateLimitRefill,
			Prefix:          "rl",
		},
		Logger: logger,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

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
