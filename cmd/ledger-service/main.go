package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/catalog"
	lhttp "github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/http"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
	kpub "github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/producer"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/repo"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ws"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/cache"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/config"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/db"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/kafka"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/logger"
	"github.com/ttamura24/Sports-Betting-Logs/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ledger-service"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de catálogos + pub/sub do feed)
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic bet_ledger_events)
	writer := kafka.NewWriter(cfg.Brokers(), cfg.TopicLedgerEvents)
	defer writer.Close()

	// deps
	store := repo.NewPostgres(pg)
	users := repo.NewUsers(pg)
	catalogs := catalog.New(rdb, repo.NewCatalogs(pg), cfg.CatalogCacheTTL, log)
	if err := catalogs.Warm(ctx); err != nil {
		log.Warn("catalog warm failed", zap.Error(err))
	}

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.CatalogRefreshSpec, func() {
		wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := catalogs.Warm(wctx); err != nil {
			log.Warn("catalog refresh failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("invalid catalog refresh spec", zap.String("spec", cfg.CatalogRefreshSpec), zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	svc := ledger.NewService(log, store, catalogs, users)
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicLedgerEvents)

	// feed ao vivo: worker publica no Redis, o hub repassa aos clientes
	hub := ws.NewHub(allowOrigin(cfg.CORSOrigins), log)
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)

	api := lhttp.NewServer(log, svc, users, publ, hub, lhttp.NewMetrics(prometheus.DefaultRegisterer), cfg.CORSOrigins)
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort,
		metrics.HealthCheck{Name: "postgres", Check: pg.PingContext},
		metrics.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	go func() {
		log.Info("ledger-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("ledger-service stopped")
}

// allowOrigin libera o upgrade do websocket para as mesmas origens do CORS
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
	}
}
