package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcanalabs/significator/internal/analytics"
	"github.com/arcanalabs/significator/internal/catalog"
	"github.com/arcanalabs/significator/internal/index"
	"github.com/arcanalabs/significator/internal/searcher/cache"
	"github.com/arcanalabs/significator/internal/server"
	"github.com/arcanalabs/significator/pkg/config"
	"github.com/arcanalabs/significator/pkg/health"
	"github.com/arcanalabs/significator/pkg/kafka"
	"github.com/arcanalabs/significator/pkg/logger"
	"github.com/arcanalabs/significator/pkg/metrics"
	"github.com/arcanalabs/significator/pkg/middleware"
	"github.com/arcanalabs/significator/pkg/postgres"
	pkgredis "github.com/arcanalabs/significator/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting card search service", "port", cfg.Server.Port, "catalog_source", cfg.Catalog.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	loadCatalog, closeSource, err := catalogLoader(cfg)
	if err != nil {
		slog.Error("failed to configure catalog source", "error", err)
		os.Exit(1)
	}
	if closeSource != nil {
		defer closeSource()
	}

	cat, err := loadCatalog(ctx)
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// The index is built explicitly here, before the server accepts a
	// single request; nothing on the query path builds lazily.
	buildStart := time.Now()
	ix := index.Build(cat)
	handle := index.NewHandle(ix)
	slog.Info("index built",
		"cards", ix.TotalCards(),
		"terms", ix.TermCount(),
		"duration", time.Since(buildStart),
	)
	if m != nil {
		m.IndexBuildsTotal.WithLabelValues("ok").Inc()
		m.IndexBuildDuration.Observe(time.Since(buildStart).Seconds())
		m.IndexTermCount.Set(float64(ix.TermCount()))
		m.IndexCardCount.Set(float64(ix.TotalCards()))
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 4096)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topic)
	}

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		current := handle.Load()
		if current == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "index not built"}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d cards, %d terms", current.TotalCards(), current.TermCount()),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.New(handle, cat, loadCatalog, queryCache, collector, m, cfg.Search)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("card search service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("card search service stopped")
}

// catalogLoader selects the deck source from config. The embedded deck
// needs no teardown; the Postgres source returns a close function for
// its connection pool.
func catalogLoader(cfg *config.Config) (server.CatalogLoader, func() error, error) {
	switch cfg.Catalog.Source {
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		loader := func(ctx context.Context) (*catalog.Catalog, error) {
			cards, err := client.LoadCards(ctx)
			if err != nil {
				return nil, err
			}
			return catalog.New(cards)
		}
		return loader, client.Close, nil
	default:
		loader := func(ctx context.Context) (*catalog.Catalog, error) {
			return catalog.LoadEmbedded()
		}
		return loader, nil, nil
	}
}
