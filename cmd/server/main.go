package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-equipment-booking/internal/booking"
	"github.com/iliyamo/room-equipment-booking/internal/config"
	"github.com/iliyamo/room-equipment-booking/internal/database"
	"github.com/iliyamo/room-equipment-booking/internal/handler"
	"github.com/iliyamo/room-equipment-booking/internal/logger"
	"github.com/iliyamo/room-equipment-booking/internal/middleware"
	"github.com/iliyamo/room-equipment-booking/internal/queue"
	"github.com/iliyamo/room-equipment-booking/internal/repository"
	"github.com/iliyamo/room-equipment-booking/internal/router"
	"github.com/iliyamo/room-equipment-booking/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.WithError(err).Fatal("migrate schema")
	}
	if cfg.Env != "prod" {
		if err := database.Seed(ctx, db, cfg.BcryptCost); err != nil {
			cancel()
			log.WithError(err).Fatal("seed data")
		}
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	reservations := repository.NewReservationRepo(db)
	maintenance := repository.NewMaintenanceRepo(db)
	audit := repository.NewAuditRepo(db)
	reviews := repository.NewReviewRepo(db)
	stats := repository.NewStatsRepo(db)

	// Calendar mirror: dispatcher publishes, consumer drains.  Both are
	// best-effort and never block the booking flow.
	appCtx, stop := context.WithCancel(context.Background())
	defer stop()

	dispatcher := service.NewCalendarDispatcher(cfg.RabbitMQURL, rooms, log)
	go dispatcher.Run(appCtx)
	go queue.NewCalendarConsumer(cfg.RabbitMQURL, users, log).Run(appCtx)

	engine := booking.NewService(db, reservations, rooms, equipment, audit, dispatcher, nil)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens, log),
		Reservations: handler.NewReservationHandler(engine, audit, log),
		Availability: handler.NewAvailabilityHandler(db, log),
		Rooms:        handler.NewRoomHandler(rooms, log),
		Equipment:    handler.NewEquipmentHandler(equipment, log),
		Maintenance:  handler.NewMaintenanceHandler(maintenance, rooms, log),
		Reviews:      handler.NewReviewHandler(reviews, log),
		Stats:        handler.NewStatsHandler(stats, log),
		Calendar:     handler.NewCalendarHandler(users, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))

	// Redis is optional: when unreachable both middlewares no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, response cache and rate limiting disabled")
	}
	e.Use(middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewResponseCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e, h, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("server starting")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
