package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/jarimae/jarimae-api/internal/config"
	"github.com/jarimae/jarimae-api/internal/database"
	"github.com/jarimae/jarimae-api/internal/handler"
	"github.com/jarimae/jarimae-api/internal/middleware"
	"github.com/jarimae/jarimae-api/internal/queue"
	"github.com/jarimae/jarimae-api/internal/repository"
	"github.com/jarimae/jarimae-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and caching disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	stores := repository.NewStoreRepo(db)
	tables := repository.NewTableRepo(db)
	menus := repository.NewMenuRepo(db)
	reservations := repository.NewReservationRepo(db)
	reviews := repository.NewReviewRepo(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(stores, menus, reviews, reservations)
	ownerH := handler.NewOwnerHandler(stores, tables, menus)
	reservationH := handler.NewReservationHandler(cfg, reservations, stores, reviews)
	reviewH := handler.NewReviewHandler(reservations, reviews, stores)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, middleware.NewResponseCache(config.LoadCacheConfig(), rdb))
	router.RegisterReservations(e, reservationH, reviewH, cfg.JWTSecret)
	router.RegisterOwner(e, ownerH, reservationH, cfg.JWTSecret)

	// Settlement log consumer; reconnects on broker failures.
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
