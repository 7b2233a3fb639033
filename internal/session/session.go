// Package session keeps signed-in state on the server. The browser only holds
// a signed cookie naming a session id; tokens and candidate pools stay in
// Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/tracys-match/internal/models"
)

const keyPrefix = "session:"

// ErrNotFound means the session expired or was signed out.
var ErrNotFound = errors.New("session not found")

// Data is everything stored for one signed-in browser.
type Data struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`

	// Recovery marks a session opened from a password reset link. It only
	// grants access to the password form.
	Recovery bool `json:"recovery,omitempty"`

	CuratorPool []models.Candidate `json:"curator_pool,omitempty"`
	DaterPool   []models.Candidate `json:"dater_pool,omitempty"`
}

// Account returns the identity the data belongs to.
func (d *Data) Account() models.Account {
	return models.Account{ID: d.UserID, Email: d.Email, AccessToken: d.AccessToken}
}

// NeedsRefresh reports whether the access token expires within margin.
func (d *Data) NeedsRefresh(now time.Time, margin time.Duration) bool {
	return d.RefreshToken != "" && !d.ExpiresAt.IsZero() && now.Add(margin).After(d.ExpiresAt)
}

// Pool returns the role's candidate list, or nil if it was never seeded.
func (d *Data) Pool(role models.Role) []models.Candidate {
	if role == models.RoleCurator {
		return d.CuratorPool
	}
	return d.DaterPool
}

func (d *Data) SetPool(role models.Role, list []models.Candidate) {
	if role == models.RoleCurator {
		d.CuratorPool = list
		return
	}
	d.DaterPool = list
}

// Store persists session data in Redis with a sliding TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create stores d under a fresh id and returns the id.
func (s *Store) Create(ctx context.Context, d *Data) (string, error) {
	id := uuid.NewString()
	if err := s.Save(ctx, id, d); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &d, nil
}

// Save overwrites the session and restarts its TTL.
func (s *Store) Save(ctx context.Context, id string, d *Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+id, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
