package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/JayKakadiya/ui-plugin-samples/internal/exports"
	"github.com/JayKakadiya/ui-plugin-samples/internal/queue"
	"github.com/JayKakadiya/ui-plugin-samples/internal/storage"
	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/dataaccess"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/graph"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/leaselock"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnvString("LOG_FORMAT", "text") == "json",
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	// Exports run without a caller, so the data-access client uses its API key.
	client := dataaccess.NewClientFromEnv()
	deriver, err := graph.NewGraphDeriver(graph.NewGraphDeriverParams{
		Schema:   client,
		Entities: client,
		Timeout:  util.GetEnvDuration("DERIVE_TIMEOUT", graph.DefaultTimeout),
	})
	if err != nil {
		logger.Fatal("Could not create graph deriver", "err", err)
	}

	// Init s3 client
	s3, err := storage.NewStore(ctx)
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}

	// Init pgx client
	databaseURL := util.GetEnv("DATABASE_URL")
	if err := exports.Migrate(databaseURL, util.GetEnvString("MIGRATIONS_PATH", "migrations")); err != nil {
		logger.Fatal("Failed to migrate database", "err", err)
	}
	pgConn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{exports.Queue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	worker := exports.NewWorker(exports.NewWorkerParams{
		Store:    exports.NewStore(pgConn),
		Deriver:  deriver,
		Uploader: s3,
		Locker:   leaselock.New(pgConn),
		Lease: leaselock.Options{
			TTL: util.GetEnvDuration("EXPORT_LEASE_TTL", leaselock.DefaultTTL),
		},
	})

	maxRetries := int(util.GetEnvNumeric("EXPORT_MAX_RETRIES", queue.DefaultMaxRetries))
	err = queue.Consume(ctx, ch, exports.Queue, maxRetries, func(ctx context.Context, body []byte) error {
		err := worker.Process(ctx, body)
		if errors.Is(err, exports.ErrBadFormat) {
			return util.NewPermanent(err)
		}
		return err
	})
	if err != nil {
		logger.Fatal("Consumer stopped", "err", err)
	}

	logger.Info("Shutdown signal received, exiting...")
}
