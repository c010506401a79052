package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/navid-fn/ecomdash/configs"
	"github.com/navid-fn/ecomdash/internal/dataset"
	"github.com/navid-fn/ecomdash/internal/logger"
	"github.com/navid-fn/ecomdash/internal/repository"
	"github.com/navid-fn/ecomdash/internal/service"
	"github.com/navid-fn/ecomdash/server/internal/handler"
	"github.com/navid-fn/ecomdash/server/internal/router"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

func main() {
	cfg := configs.AppLoad()
	log := logger.New(cfg.LogLevel)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	source, err := newSource(cfg, log)
	if err != nil {
		log.Fatalf("Failed to configure dataset source: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dashboards := service.NewDashboardService(source, log)
	if cfg.Dataset.Preload {
		if _, err := dashboards.Table(ctx); err != nil {
			log.Fatalf("Failed to preload dataset: %v", err)
		}
	}

	sessions := service.NewSessionService(dashboards, cfg.Server.SessionTTL, log)
	go sessions.Run(ctx, sessionSweepInterval)

	routerConfig := &router.Config{
		DashboardHandler: handler.NewDashboardHandler(dashboards, log),
		SessionHandler:   handler.NewSessionHandler(sessions, dashboards, log),
		Logger:           log,
		RateLimitRPS:     cfg.Server.RateLimitRPS,
		RateLimitBurst:   cfg.Server.RateLimitBurst,
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router.NewRouter(routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Serving dashboard API on %s (source: %s)", srv.Addr, cfg.Dataset.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Received shutdown signal, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
		os.Exit(1)
	}
}

// newSource returns the configured order-line source.
func newSource(cfg *configs.AppConfig, log *logrus.Logger) (service.Source, error) {
	switch cfg.Dataset.Source {
	case configs.SourceClickHouse:
		db, err := gorm.Open(clickhouse.Open(cfg.DBDSN), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return repository.NewGormOrderLineRepository(db), nil

	default:
		policy, err := dataset.ParsePolicy(cfg.Dataset.MalformedRows)
		if err != nil {
			return nil, err
		}
		return service.CSVSource{
			Path: cfg.Dataset.Path,
			Options: []dataset.LoadOption{
				dataset.WithDelimiter(cfg.Dataset.Delimiter),
				dataset.WithPolicy(policy),
				dataset.WithLogger(log),
			},
		}, nil
	}
}
