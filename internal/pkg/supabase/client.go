// Package supabase wraps the GoTrue, PostgREST and Storage clients behind one
// configured handle. Every call that acts for a user takes that user's access
// token, so the handle itself holds no per-user state and is shared by all
// requests.
package supabase

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go"

	"github.com/illegalcall/tracys-match/internal/config"
)

const (
	authPath    = "/auth/v1"
	restPath    = "/rest/v1"
	storagePath = "/storage/v1"
	schema      = "public"

	requestTimeout = 10 * time.Second
)

// Client is the single backend handle reused by every page.
type Client struct {
	url  string
	key  string
	auth gotrue.Client
}

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: https://akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.Split(url, ".")[0]
}

// New builds the client. It fails when the URL or key is blank or the URL is
// not an http(s) URL.
func New(supabaseURL, anonKey string) (*Client, error) {
	supabaseURL = strings.TrimRight(strings.TrimSpace(supabaseURL), "/")
	anonKey = strings.TrimSpace(anonKey)

	if err := (config.SupabaseConfig{URL: supabaseURL, AnonKey: anonKey}).Validate(); err != nil {
		return nil, err
	}

	// Truncate key for logging to avoid exposing the full key
	truncatedKey := ""
	if len(anonKey) > 10 {
		truncatedKey = anonKey[:10] + "..."
	}
	slog.Info("Initializing Supabase client", "project_ref", extractProjectRef(supabaseURL), "key", truncatedKey)

	auth := gotrue.New(extractProjectRef(supabaseURL), anonKey).
		WithCustomGoTrueURL(supabaseURL + authPath).
		WithClient(http.Client{Timeout: requestTimeout})

	return &Client{
		url:  supabaseURL,
		key:  anonKey,
		auth: auth,
	}, nil
}

// bearer falls back to the anon key for anonymous requests.
func (c *Client) bearer(accessToken string) string {
	if accessToken == "" {
		return c.key
	}
	return accessToken
}
