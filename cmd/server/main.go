package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/k-experience/service-reservation/internal/adapter"
	"github.com/k-experience/service-reservation/internal/application"
	"github.com/k-experience/service-reservation/internal/cache"
	"github.com/k-experience/service-reservation/internal/config"
	"github.com/k-experience/service-reservation/internal/events"
	"github.com/k-experience/service-reservation/internal/handler"
	"github.com/k-experience/service-reservation/internal/platform/auth"
	"github.com/k-experience/service-reservation/internal/platform/database"
	"github.com/k-experience/service-reservation/internal/platform/health"
	"github.com/k-experience/service-reservation/internal/platform/kafka"
	"github.com/k-experience/service-reservation/internal/platform/logger"
	"github.com/k-experience/service-reservation/internal/platform/middleware"
	"github.com/k-experience/service-reservation/internal/repository"
	"github.com/k-experience/service-reservation/internal/saga"
)

const sweepInterval = time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&repository.ReservationModel{},
		&repository.InventoryModel{},
		&repository.CouponModel{},
		&repository.CampaignModel{},
		&repository.AffiliateModel{},
	); err != nil {
		zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	// Optional Redis advisory cache; nil client falls back to the database.
	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, zapLogger)
	availabilityCache := cache.NewAvailabilityCache(redisClient, zapLogger)

	// Initialize payment gateway (mock, idempotent by merchant UID)
	gateway := adapter.NewMockPaymentGateway(zapLogger)

	// Initialize repositories
	reservationRepo := repository.NewReservationRepository(db)
	couponRepo := repository.NewGormCouponRepository(db)
	groupBuyRepo := repository.NewGormGroupBuyRepository(db)
	affiliateRepo := repository.NewGormAffiliateRepository(db)

	// Initialize saga service
	sagaService := saga.NewBookingSagaService(reservationRepo, groupBuyRepo, gateway, kafkaProducer, zapLogger)

	// Initialize application services
	reservationService := application.NewReservationService(reservationRepo, sagaService, affiliateRepo, availabilityCache, zapLogger)
	couponService := application.NewCouponService(couponRepo, zapLogger)
	groupBuyService := application.NewGroupBuyService(groupBuyRepo, sagaService, kafkaProducer, zapLogger)
	affiliateService := application.NewAffiliateService(affiliateRepo, zapLogger)

	// Initialize mailer and the notification consumer
	var mailer adapter.Mailer
	if cfg.SMTPConfig.Host != "" {
		mailer = adapter.NewSMTPMailer(
			cfg.SMTPConfig.Host,
			cfg.SMTPConfig.Port,
			cfg.SMTPConfig.User,
			cfg.SMTPConfig.Pass,
			cfg.SMTPConfig.From,
			zapLogger,
		)
	} else {
		mailer = adapter.NewNoopMailer(zapLogger)
	}

	notificationConsumer := events.NewNotificationConsumer(
		cfg.KafkaConfig.Brokers,
		cfg.KafkaConfig.GroupPrefix+"-notifications",
		mailer,
		cfg.StorefrontOrigin,
		zapLogger,
	)
	defer notificationConsumer.Close()

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting notification consumer")
		if err := notificationConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("notification consumer failed", zap.Error(err))
			}
		}
	}()

	// Periodically complete group-buy campaigns whose visit date has passed.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-consumerCtx.Done():
				return
			case <-ticker.C:
				groupBuyService.SweepExpired(consumerCtx)
			}
		}
	}()

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(reservationService)
	couponHandler := handler.NewCouponHandler(couponService)
	groupBuyHandler := handler.NewGroupBuyHandler(groupBuyService)
	affiliateHandler := handler.NewAffiliateHandler(affiliateService, cfg.StorefrontOrigin)
	catalogHandler := handler.NewCatalogHandler()
	adminHandler := handler.NewAdminHandler(reservationService, couponService, affiliateService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register routes
	affiliateHandler.RegisterRoutes(router)

	apiV1 := router.Group("/api/v1")
	reservationHandler.RegisterRoutes(apiV1, jwtManager)
	couponHandler.RegisterRoutes(apiV1)
	groupBuyHandler.RegisterRoutes(apiV1, jwtManager)
	catalogHandler.RegisterRoutes(apiV1)
	adminHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-reservation...")

	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	zapLogger.Info("service-reservation stopped")
}
