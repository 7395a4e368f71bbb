package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/campusnest/internal/config"
	"github.com/iliyamo/campusnest/internal/database"
	"github.com/iliyamo/campusnest/internal/handler"
	"github.com/iliyamo/campusnest/internal/middleware"
	"github.com/iliyamo/campusnest/internal/observability"
	"github.com/iliyamo/campusnest/internal/queue"
	"github.com/iliyamo/campusnest/internal/receipt"
	"github.com/iliyamo/campusnest/internal/repository"
	"github.com/iliyamo/campusnest/internal/router"
	"github.com/iliyamo/campusnest/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	logger := observability.NewLogger(cfg.Env)
	log.Logger = logger

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(mctx, db)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("migrate failed")
		}
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable
	if rdb != nil {
		defer rdb.Close()
	}
	reg := observability.InitRegistry()

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	pgs := repository.NewPGRepo(db)
	bookings := repository.NewBookingRepo(db)
	receipts := repository.NewReceiptRepo(db)
	contacts := repository.NewContactRepo(db)

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitURL)
	}

	// services
	props := service.NewPropertyService(pgs, cfg.SearchLimit, cfg.TopLimit)
	ratings := service.NewRatingService(pgs)
	bookingSvc := service.NewBookingService(bookings, pgs, users,
		receipt.NewGenerator(cfg.ReceiptsDir, cfg.ReceiptBaseURL), receipts, events,
		service.BookingOptions{ReceiptTimeout: cfg.ReceiptTimeout, StrictAmount: cfg.StrictAmount})
	contactSvc := service.NewContactService(contacts)

	// handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	pgH := handler.NewPGHandler(props, ratings, bookingSvc)
	bookingH := handler.NewBookingHandler(bookingSvc)
	contactH := handler.NewContactHandler(contactSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(observability.RequestLogger(logger))
	e.Use(observability.Metrics())
	rl := config.LoadRateLimitConfig()
	rl.JWTSecret = cfg.JWTSecret
	e.Use(middleware.NewTokenBucket(rl, rdb))

	router.RegisterRoutes(e, router.Ops{
		DB:          db,
		Metrics:     observability.MetricsHandler(reg),
		ReceiptsURL: cfg.ReceiptBaseURL,
		ReceiptsDir: cfg.ReceiptsDir,
	})
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, pgH, contactH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterOwner(e, pgH, bookingH, cfg.JWTSecret)
	router.RegisterSeeker(e, pgH, bookingH, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.EventsEnabled {
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogDir)
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		bookingSvc.Wait()
		os.Exit(1)
	}
	bookingSvc.Wait() // let background receipts finish writing
	log.Info().Msg("server stopped gracefully")
}
