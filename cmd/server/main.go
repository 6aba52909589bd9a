package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/logging"
	"github.com/iliyamo/event-ticketing/internal/metrics"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		LockWaitSec: cfg.LockWaitSec,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is down
	if rdb != nil {
		defer rdb.Close()
	}

	// Repositories
	tx := database.NewTransactor(db)
	events := repository.NewEventRepo(db)
	seats := repository.NewSeatClassRepo(db)
	purchases := repository.NewPurchaseRepo(db)
	reviews := repository.NewReviewRepo(db)
	inquiries := repository.NewInquiryRepo(db)
	reports := repository.NewReportRepo(db)

	// Purchase core
	coord := service.NewCoordinator(tx, seats, purchases, service.NewTicketFactory(time.Now), service.CoordinatorOptions{
		MaxAttempts:  cfg.Purchase.MaxAttempts,
		RetryBackoff: cfg.Purchase.RetryBackoff,
	}).WithMetrics(metrics.NewPurchases(prometheus.DefaultRegisterer))
	if cfg.Broker.Enabled {
		coord.WithPublisher(queue.NewPublisher(cfg.Broker.URL))
	}

	opts := router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
	}
	invalidate := router.Invalidator(opts)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(log))

	router.Register(e, router.Handlers{
		Catalog:   &handler.CatalogHandler{Events: events, Seats: seats, Reviews: reviews},
		Purchases: &handler.PurchaseHandler{Coordinator: coord, Purchases: purchases, Timeout: cfg.Purchase.Timeout},
		Tickets:   &handler.TicketHandler{Verifier: service.NewVerifier(purchases)},
		Reviews:   &handler.ReviewHandler{Reviews: reviews, Events: events, Purchases: purchases, Invalidate: invalidate},
		Inquiries: &handler.InquiryHandler{Inquiries: inquiries},
		Events:    &handler.AdminEventHandler{Events: events, Seats: seats, Invalidate: invalidate},
		Reports:   &handler.ReportHandler{Reports: service.NewReportService(reports, time.Now)},
		DB:        db,
	}, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Broker.Enabled {
		consumer := queue.NewConsumer(cfg.Broker.URL, cfg.Broker.AuditLogDir, log.WithField("env", cfg.Env))
		g.Go(func() error { return consumer.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
