package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissing is returned when a required setting is absent or blank.
var ErrMissing = errors.New("missing required configuration")

type Config struct {
	Server   ServerConfig
	Supabase SupabaseConfig
	Session  SessionConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	SiteURL         string
	ShutdownTimeout time.Duration
	MaxRequests     int
	RequestTimeout  time.Duration
	CacheExpiration time.Duration
	Environment     string
}

// SupabaseConfig holds the two values the backend client is built from.
type SupabaseConfig struct {
	URL     string
	AnonKey string
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

type DatabaseConfig struct {
	URL string // optional; enables the direct Postgres profile store
}

type KafkaConfig struct {
	Broker       string // optional; activity events go straight to Redis when empty
	Topic        string
	Group        string
	RetryMax     int
	RetryBackoff time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Bucket  string
	MaxSize int64
}

type LogConfig struct {
	Level string
}

// IsProduction reports whether GO_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// LoadDotEnv loads .env.local and .env when present. Values already set in
// the environment win.
func LoadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

// Load reads the configuration from the environment. It fails when the
// backend URL or key is missing, or when the URL is not http(s).
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            loadEnv("PORT", ":8080"),
			SiteURL:         strings.TrimRight(loadEnv("SITE_URL", "http://localhost:8080"), "/"),
			ShutdownTimeout: time.Duration(loadEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 5)) * time.Second,
			MaxRequests:     loadEnvAsInt("SERVER_MAX_REQUESTS", 100),
			RequestTimeout:  time.Duration(loadEnvAsInt("SERVER_REQUEST_TIMEOUT", 60)) * time.Second,
			CacheExpiration: time.Duration(loadEnvAsInt("SERVER_CACHE_EXPIRATION", 10)) * time.Second,
			Environment:     loadEnv("GO_ENV", "development"),
		},
		Supabase: SupabaseConfig{
			URL:     firstEnv("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"),
			AnonKey: firstEnv("SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		},
		Session: SessionConfig{
			Secret: loadEnv("SESSION_SECRET", "supersecretkey"),
			TTL:    time.Duration(loadEnvAsInt("SESSION_TTL", 168)) * time.Hour,
		},
		Database: DatabaseConfig{
			URL: loadEnv("DATABASE_URL", ""),
		},
		Kafka: KafkaConfig{
			Broker:       loadEnv("KAFKA_BROKER", ""),
			Topic:        loadEnv("KAFKA_TOPIC", "activity"),
			Group:        loadEnv("KAFKA_GROUP", "activity-workers"),
			RetryMax:     loadEnvAsInt("KAFKA_RETRY_MAX", 5),
			RetryBackoff: time.Duration(loadEnvAsInt("KAFKA_RETRY_BACKOFF", 500)) * time.Millisecond,
		},
		Redis: RedisConfig{
			Addr:     loadEnv("REDIS_ADDR", "localhost:6379"),
			Password: loadEnv("REDIS_PASSWORD", ""),
			DB:       loadEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Bucket:  loadEnv("STORAGE_BUCKET", "profile-photos"),
			MaxSize: loadEnvAsInt64("STORAGE_MAX_SIZE", 10485760), // 10MB
		},
		Log: LogConfig{
			Level: loadEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Supabase.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the backend settings: both present and the URL a
// well-formed http or https URL.
func (s SupabaseConfig) Validate() error {
	var missing []string
	if s.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if s.AnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}

	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid SUPABASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid SUPABASE_URL %q: must be an http or https URL", s.URL)
	}
	return nil
}

// firstEnv returns the first non-blank value among keys, trimmed.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func loadEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func loadEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func loadEnvAsInt64(key string, defaultVal int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}
