package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/illegalcall/tracys-match/internal/activity"
	"github.com/illegalcall/tracys-match/internal/api"
	"github.com/illegalcall/tracys-match/internal/config"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
	"github.com/illegalcall/tracys-match/internal/profiles"
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
	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.IsProduction(), "api"))

	ctx := context.Background()

	// Initialize database clients
	db, err := database.NewClients(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to Redis", "addr", cfg.Redis.Addr)

	backend, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey)
	if err != nil {
		slog.Error("Failed to create Supabase client", "error", err)
		os.Exit(1)
	}

	// Profile rows go through PostgREST unless a direct database is configured
	var store profiles.Store = profiles.NewRESTStore(backend)
	if db.DB != nil {
		sqlStore := profiles.NewSQLStore(db.DB)
		if err := sqlStore.CreateTables(ctx); err != nil {
			slog.Error("Failed to create profile tables", "error", err)
			os.Exit(1)
		}
		store = sqlStore
		slog.Info("Using Postgres profile store")
	}

	// Activity events go through Kafka when a broker is configured
	var publisher activity.Publisher = activity.NewFeedPublisher(activity.NewFeed(db.Redis))
	if cfg.Kafka.Broker != "" {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			slog.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		kp := activity.NewKafkaPublisher(producer, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		slog.Info("Connected to Kafka", "broker", cfg.Kafka.Broker)
	}

	// Create and start server
	server, err := api.NewServer(cfg, db, backend, store, publisher)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}
