package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBackendEnv(t *testing.T, url, key string) {
	t.Setenv("SUPABASE_URL", url)
	t.Setenv("SUPABASE_ANON_KEY", key)
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	setBackendEnv(t, "https://abcd.supabase.co", "anon-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://abcd.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "anon-key", cfg.Supabase.AnonKey)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "profile-photos", cfg.Storage.Bucket)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxSize)
	assert.Equal(t, 168*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.RetryBackoff)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setBackendEnv(t, "http://localhost:54321", "local-key")
	t.Setenv("SITE_URL", "https://match.example.com/")
	t.Setenv("GO_ENV", "production")
	t.Setenv("SERVER_MAX_REQUESTS", "7")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://match.example.com", cfg.Server.SiteURL)
	assert.Equal(t, 7, cfg.Server.MaxRequests)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFallsBackToPublicNames(t *testing.T) {
	setBackendEnv(t, "", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", " https://abcd.supabase.co ")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "anon-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://abcd.supabase.co", cfg.Supabase.URL)
}

func TestLoadRejectsBadBackendSettings(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		key         string
		wantMissing bool
	}{
		{name: "both missing", url: "", key: "", wantMissing: true},
		{name: "blank key", url: "https://abcd.supabase.co", key: "   ", wantMissing: true},
		{name: "missing url", url: "", key: "anon-key", wantMissing: true},
		{name: "no scheme", url: "abcd.supabase.co", key: "anon-key"},
		{name: "ftp scheme", url: "ftp://abcd.supabase.co", key: "anon-key"},
		{name: "no host", url: "https://", key: "anon-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBackendEnv(t, tt.url, tt.key)

			cfg, err := Load()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Equal(t, tt.wantMissing, errors.Is(err, ErrMissing))
		})
	}
}
