package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/medagenda/scheduler-api/internal/config"
	"github.com/medagenda/scheduler-api/internal/repository/postgres"
	"github.com/medagenda/scheduler-api/pkg/logger"
	"github.com/medagenda/scheduler-api/pkg/messaging/redis"
	"github.com/medagenda/scheduler-api/pkg/metrics"
	"github.com/medagenda/scheduler-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	lg := logger.NewLogger(nil)

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), lg.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.NewMetrics("medagenda", "scheduler_worker")

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		lg,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go processor.Start(ctx)
	lg.Info("outbox processor started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down worker...")
	cancel()
}
