package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/tracys-match/internal/config"
)

// Clients holds the connections shared by the server and the worker. DB is
// nil unless DATABASE_URL is set.
type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	clients := &Clients{Redis: redisClient}
	if cfg.Database.URL == "" {
		return clients, nil
	}

	// Connect to PostgreSQL
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	clients.DB = db
	slog.Info("Connected to Postgres")

	return clients, nil
}

func (c *Clients) Close() error {
	var dbErr error
	if c.DB != nil {
		dbErr = c.DB.Close()
	}
	if err := c.Redis.Close(); err != nil {
		return err
	}
	return dbErr
}
