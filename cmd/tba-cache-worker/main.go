// Command tba-cache-worker executes deferred cache invalidation and post-update
// hook tasks written by the API and ingestion processes.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-tba-cache/cache"
	"github.com/goliatone/go-tba-cache/datastore"
	"github.com/goliatone/go-tba-cache/manipulator"
	"github.com/goliatone/go-tba-cache/pkg/di"
	"github.com/goliatone/go-tba-cache/taskqueue"
)

type config struct {
	CacheBackend    string        `env:"TBA_CACHE_BACKEND" envDefault:"redis"`
	QueueBackend    string        `env:"TBA_QUEUE_BACKEND" envDefault:"redis"`
	RedisURL        string        `env:"TBA_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	DatabaseURL     string        `env:"TBA_DATABASE_URL"`
	CreateSchema    bool          `env:"TBA_CREATE_SCHEMA" envDefault:"false"`
	Workers         int           `env:"TBA_WORKERS" envDefault:"4"`
	MaxAttempts     int           `env:"TBA_MAX_ATTEMPTS" envDefault:"5"`
	CacheTTL        time.Duration `env:"TBA_CACHE_TTL" envDefault:"24h"`
	MetricsAddr     string        `env:"TBA_METRICS_ADDR" envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"TBA_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"TBA_LOG_LEVEL" envDefault:"info"`
}

func (c config) container() di.Config {
	cfg := di.DefaultConfig()
	cfg.Cache.Backend = cache.Backend(c.CacheBackend)
	cfg.Cache.TTL = c.CacheTTL
	cfg.Tasks.Backend = taskqueue.Backend(c.QueueBackend)
	cfg.Tasks.Workers = c.Workers
	cfg.Tasks.Retry.MaxAttempts = c.MaxAttempts
	return cfg
}

func (c config) needsRedis() bool {
	return c.CacheBackend == string(cache.BackendRedis) || c.QueueBackend == string(taskqueue.BackendRedis)
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tba-cache-worker: parse environment: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []di.Option{di.WithLogger(logger), di.WithMetrics(reg)}

	if cfg.needsRedis() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse TBA_REDIS_URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		opts = append(opts, di.WithRedis(client))
	}

	if cfg.DatabaseURL != "" {
		sqldb, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping: %w", err)
		}
		if cfg.CreateSchema {
			if err := datastore.CreateSchema(ctx, db); err != nil {
				return err
			}
		}
		opts = append(opts, di.WithStore(datastore.NewBunStore(db)))
	} else {
		logger.Warn("TBA_DATABASE_URL not set, using in-memory store")
	}

	container, err := di.NewContainer(cfg.container(), opts...)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	queues := []string{manipulator.CacheClearingQueue, manipulator.PostUpdateQueue}
	logger.Info("worker starting",
		"cache_backend", cfg.CacheBackend,
		"queue_backend", cfg.QueueBackend,
		"workers", cfg.Workers,
		"queues", queues,
	)

	switch q := container.Queue().(type) {
	case *taskqueue.Redis:
		for range cfg.Workers {
			g.Go(func() error { return q.Consume(ctx, queues...) })
		}
	case *taskqueue.InProc:
		if err := container.Start(ctx); err != nil {
			return fmt.Errorf("start workers: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return container.Stop(cfg.ShutdownTimeout)
		})
	default:
		return fmt.Errorf("queue backend %q has no worker loop", cfg.QueueBackend)
	}

	return g.Wait()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
