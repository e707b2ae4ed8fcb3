package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/auth"
	"github.com/campusbook/facility-reservation/internal/booking"
	"github.com/campusbook/facility-reservation/internal/config"
	"github.com/campusbook/facility-reservation/internal/database"
	"github.com/campusbook/facility-reservation/internal/handler"
	"github.com/campusbook/facility-reservation/internal/middleware"
	"github.com/campusbook/facility-reservation/internal/queue"
	"github.com/campusbook/facility-reservation/internal/repository"
	"github.com/campusbook/facility-reservation/internal/router"
	queue_publisher "github.com/campusbook/facility-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: %v", err)
	}
	cancel()

	// Redis is optional: without it the blacklist is process-local and the
	// rate limiter and response cache become pass-throughs.
	rdb := config.NewRedisClient()
	var blacklist auth.Blacklist
	if rdb != nil {
		blacklist = auth.NewRedisBlacklist(rdb)
	} else {
		log.Println("redis unavailable; using in-memory token blacklist")
		blacklist = auth.NewMemoryBlacklist()
	}

	tokens, err := auth.NewService(cfg.JWTSecret, time.Duration(cfg.TokenTTLMin)*time.Minute, blacklist)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	users := repository.NewUserRepo(db)
	facilities := repository.NewFacilityRepo(db)
	bookings := repository.NewBookingRepo(db)

	engine := booking.NewEngine(facilities, bookings, queue_publisher.Notifier{})

	// Background consumer writes confirmed-booking audit lines; it keeps
	// reconnecting on broker failures and never stops the server.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Facilities:   handler.NewFacilityHandler(facilities),
		Bookings:     handler.NewBookingHandler(engine),
		Availability: handler.NewAvailabilityHandler(engine),
		Sessions:     middleware.Session(tokens, users),
		Redis:        rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
