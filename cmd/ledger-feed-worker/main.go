package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-feed/consumer"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-feed/pubsub"
	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-feed/repository"
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
		cfg.ServiceName = "ledger-feed-worker"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group ledger-feed no tópico de eventos do ledger
	reader := kafka.NewReader(cfg.Brokers(), cfg.TopicLedgerEvents, "ledger-feed")
	defer reader.Close()

	var dlq *kafka.Writer
	if cfg.TopicLedgerEventsDLQ != "" {
		dlq = kafka.NewWriter(cfg.Brokers(), cfg.TopicLedgerEventsDLQ)
		defer dlq.Close()
	}

	// Métricas Prometheus por estágio
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_feed_messages_consumed_total", Help: "mensagens consumidas"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_feed_history_writes_total", Help: "eventos gravados no histórico"})
	broadcast := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_feed_broadcasts_total", Help: "atualizações enviadas ao feed"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_feed_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, broadcast, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repository.NewPostgresRepo(pg),
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient),
		Channel:     cfg.RedisPubSubChannel,
		OnConsumed:  func() { consumed.Inc() },
		OnPersist:   func() { persist.Inc() },
		OnBroadcast: func() { broadcast.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	if dlq != nil {
		proc.DLQ = dlq
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort,
		metrics.HealthCheck{Name: "postgres", Check: pg.PingContext},
		metrics.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	)
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ledger-feed started", zap.String("topic", cfg.TopicLedgerEvents))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("ledger-feed stopped")
}
