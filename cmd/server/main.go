package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/config"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/database"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/handler"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/middleware"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/queue"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/repository"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/router"
	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/service"
)

func main() {
	cfg := config.Load()
	booking := config.LoadBookingConfig()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	// A nil publisher keeps the engine running without RabbitMQ.
	var events service.EventPublisher
	if cfg.QueueEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		// Bookings only enqueue; the broker is reached off the request path.
		dispatcher := queue.NewDispatcher(pub, 256, 5*time.Second)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := dispatcher.Close(drainCtx); err != nil {
				log.Printf("queue dispatcher: %v", err)
			}
		}()
		events = dispatcher

		consumer := queue.Consumer{URL: cfg.AMQPURL, LogDir: cfg.EventLogDir}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("queue consumer stopped: %v", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	store := repository.NewStore(db)

	svc := service.NewReservationService(store, events, service.Options{
		MaxDurationHours:       booking.MaxDurationHours,
		ReportIncludeCancelled: booking.ReportIncludeCancelled,
	})

	var purge handler.CachePurger
	var cache echo.MiddlewareFunc
	if rdb != nil && cacheCfg.Enabled {
		cache = middleware.NewRedisCache(cacheCfg, rdb)
		purge = func(ctx context.Context) {
			if _, err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix); err != nil {
				log.Printf("cache purge: %v", err)
			}
		}
	}

	e := echo.New()
	e.HideBanner = true
	router.Use(e, cfg, middleware.NewTokenBucket(rlCfg, rdb))
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterRooms(e, handler.NewRoomHandler(svc), cache)
	router.RegisterReservations(e,
		handler.NewReservationHandler(svc, rooms, service.NewPassSigner(cfg.JWTSecret), purge),
		cfg.JWTSecret, users)
	router.RegisterAdmin(e, handler.NewAdminHandler(svc, rooms, users, purge), cfg.JWTSecret, users)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
