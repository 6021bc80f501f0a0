package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/booking-service/config"
	"github.com/courtside/booking-service/internal/cache"
	"github.com/courtside/booking-service/internal/consumer"
	"github.com/courtside/booking-service/internal/handler"
	"github.com/courtside/booking-service/internal/middleware"
	"github.com/courtside/booking-service/internal/repository"
	"github.com/courtside/booking-service/internal/service"
	"github.com/courtside/booking-service/pkg/database"
	"github.com/courtside/booking-service/pkg/logger"
	"github.com/courtside/booking-service/pkg/obs"
	"github.com/courtside/booking-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer("booking-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracer")
	}

	db, err := database.NewPostgresDB(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis is optional: without it every availability query hits Postgres.
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	availabilityCache := cache.NewAvailabilityCache(redisClient, cfg.AvailabilityCacheTTL)

	// RabbitMQ: publish booking events and audit them on our own queue
	var (
		publisher  service.EventPublisher
		mqConsumer *rabbitmq.Consumer
		auditDone  <-chan struct{}
	)
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer mqPublisher.Close()
		publisher = mqPublisher

		mqConsumer, err = rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.AuditQueueName, rabbitmq.AuditBindingKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect audit consumer")
		}
		msgs, err := mqConsumer.Consume(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start consuming")
		}
		auditDone = consumer.NewAuditConsumer(logger.Component("audit")).Start(msgs)
	} else {
		log.Warn().Msg("RABBIT_URL not set, booking events are disabled")
	}

	// Repositories
	stores := service.Stores{
		Tx:        repository.NewTxManager(db),
		Courts:    repository.NewCourtRepository(db),
		Equipment: repository.NewEquipmentRepository(db),
		Coaches:   repository.NewCoachRepository(db),
		Bookings:  repository.NewBookingRepository(db),
		Rules:     repository.NewPricingRuleRepository(db),
	}

	// Services
	loc := cfg.Location()
	bookingSvc := service.NewBookingService(stores, publisher, availabilityCache, loc)
	availabilitySvc := service.NewAvailabilityService(stores, availabilityCache, loc)
	catalogSvc := service.NewCatalogService(stores, availabilityCache)
	coachSvc := service.NewCoachService(stores, availabilityCache)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMw.Recover())
	e.Use(middleware.Metrics())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "booking-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)
	handler.NewAvailabilityHandler(availabilitySvc).RegisterRoutes(e)
	handler.NewCatalogHandler(catalogSvc, coachSvc).RegisterRoutes(e)

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("timezone", loc.String()).Msg("booking service starting")
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if mqConsumer != nil {
		mqConsumer.Close()
		<-auditDone
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("postgres close")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown")
	}
}
