package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/movietown/movietown-api/internal/config"
	"github.com/movietown/movietown-api/internal/database"
	"github.com/movietown/movietown-api/internal/handler"
	"github.com/movietown/movietown-api/internal/middleware"
	"github.com/movietown/movietown-api/internal/queue"
	"github.com/movietown/movietown-api/internal/repository"
	"github.com/movietown/movietown-api/internal/router"
	"github.com/movietown/movietown-api/migrations"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := migrations.Apply(ctx, db); err != nil {
		cancel()
		log.Fatalf("apply migrations: %v", err)
	}
	cancel()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	movieRepo := repository.NewMovieRepo(db)
	cinemaRepo := repository.NewCinemaRepo(db)
	screeningRepo := repository.NewScreeningRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	movieHandler := handler.NewMovieHandler(movieRepo)
	cinemaHandler := handler.NewCinemaHandler(cinemaRepo)
	screeningHandler := handler.NewScreeningHandler(screeningRepo)
	reservationHandler := handler.NewReservationHandler(reservationRepo, screeningRepo)
	userHandler := handler.NewUserHandler(userRepo)

	// Redis is optional: nil disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterPublic(e, movieHandler, cinemaHandler, screeningHandler, reservationHandler, rdb)
	router.RegisterUser(e, reservationHandler, userHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, screeningHandler, userHandler, cfg.JWTSecret)

	// Consumer keeps its own reconnect loop for the broker.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
