package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/illegalcall/tracys-match/internal/activity"
	"github.com/illegalcall/tracys-match/internal/config"
	"github.com/illegalcall/tracys-match/internal/worker"
	"github.com/illegalcall/tracys-match/pkg/database"
	"github.com/illegalcall/tracys-match/pkg/kafka"
	"github.com/illegalcall/tracys-match/pkg/logging"
)

func main() {
	// Load configuration
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.IsProduction(), "worker"))

	if cfg.Kafka.Broker == "" {
		slog.Error("KAFKA_BROKER is required to run the activity worker")
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize database clients
	db, err := database.NewClients(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to Redis", "addr", cfg.Redis.Addr)

	// Initialize Kafka consumer
	consumer, err := kafka.NewConsumer(cfg.Kafka)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()
	slog.Info("Connected to Kafka", "broker", cfg.Kafka.Broker, "group", cfg.Kafka.Group)

	// Create and start worker
	w := worker.NewWorker(cfg, activity.NewFeed(db.Redis), consumer)
	if err := w.Start(ctx); err != nil {
		slog.Error("Worker error", "error", err)
		os.Exit(1)
	}
}
