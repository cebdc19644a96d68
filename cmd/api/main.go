package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"fundvote/docs"
	"fundvote/internal/bootstrap"
	"fundvote/internal/config"
	handlers "fundvote/internal/http/handler"
	"fundvote/internal/http/middleware"
	"fundvote/internal/logger"
	"fundvote/internal/otel"
	"fundvote/internal/service"
	"fundvote/internal/snapshot"
)

// @title Fundvote Proposal API
// @version 1.0
// @description Research funding proposal catalog with community voting.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	// Object storage is optional; it backs snapshot export and snapshot seeding.
	objStore, err := bootstrap.ObjectStorage(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	seed, err := bootstrap.Seed(ctx, cfg.Catalog, objStore)
	if err != nil {
		return err
	}
	store, err := bootstrap.OpenStore(ctx, cfg, seed, log)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("store_ready", zap.String("driver", store.Driver), zap.Int("seed_size", len(seed)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return err
	}

	proposalSvc := service.NewProposalService(store.Repo,
		service.WithLogger(log.With(zap.String("component", "service"))),
		service.WithMetrics(metrics),
	)

	var exporter handlers.SnapshotExporter
	var scheduler *snapshot.Scheduler
	if objStore != nil {
		exp := snapshot.NewExporter(store.Repo, objStore, cfg.Snapshot.Prefix,
			snapshot.WithLogger(log.With(zap.String("component", "snapshot"))),
		)
		exporter = exp
		if cfg.Snapshot.Interval > 0 {
			scheduler, err = snapshot.NewScheduler(exp, cfg.Snapshot.Interval, log)
			if err != nil {
				return err
			}
			scheduler.Start()
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// RequestID adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log.With(zap.String("component", "http"))))
	app.Use(promMiddleware.Handler())

	var pinger handlers.Pinger
	if store.DB != nil {
		pinger = store.DB
	}
	handlers.RegisterRoutes(app, pinger, proposalSvc, exporter)
	app.Get("/metrics", handlers.Metrics(reg))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		host := c.Get("Host")
		if host == "" {
			host = cfg.AppHost
		}
		docs.SwaggerInfo.Host = host
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", zap.String("addr", ":"+cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("server_shutdown")
		err = app.ShutdownWithTimeout(10 * time.Second)
	}

	if scheduler != nil {
		if serr := scheduler.Shutdown(); serr != nil {
			err = errors.Join(err, serr)
		}
	}
	return err
}
