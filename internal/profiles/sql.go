package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/illegalcall/tracys-match/internal/models"
)

// SQLStore reads and writes the same tables over a direct Postgres
// connection. It is used when DATABASE_URL is configured.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateTables creates the profile tables if they are missing.
func (s *SQLStore) CreateTables(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		role TEXT NOT NULL CHECK (role IN ('dater', 'curator')),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS dater_profiles (
		id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
		bio TEXT NOT NULL DEFAULT '',
		photos TEXT[] NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create profile tables: %w", err)
	}

	slog.Info("Profile tables are ready")
	return nil
}

func (s *SQLStore) Role(ctx context.Context, acct models.Account) (models.Role, error) {
	var row models.Profile
	err := s.db.GetContext(ctx, &row, "SELECT id, role FROM profiles WHERE id = $1", acct.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load role: %w", err)
	}

	role, ok := models.ParseRole(string(row.Role))
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func (s *SQLStore) SetRole(ctx context.Context, acct models.Account, role models.Role) error {
	if _, ok := models.ParseRole(string(role)); !ok {
		return fmt.Errorf("invalid role %q", role)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, role) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role`,
		acct.ID, role)
	if err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

type daterProfileRow struct {
	ID     string         `db:"id"`
	Bio    string         `db:"bio"`
	Photos pq.StringArray `db:"photos"`
}

func (s *SQLStore) DaterProfile(ctx context.Context, acct models.Account) (models.DaterProfile, error) {
	var row daterProfileRow
	err := s.db.GetContext(ctx, &row, "SELECT id, bio, photos FROM dater_profiles WHERE id = $1", acct.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DaterProfile{ID: acct.ID, Photos: []string{}}, ErrNotFound
	}
	if err != nil {
		return models.DaterProfile{}, fmt.Errorf("failed to load dater profile: %w", err)
	}
	return withPhotos(models.DaterProfile{ID: row.ID, Bio: row.Bio, Photos: row.Photos}), nil
}

func (s *SQLStore) SaveDaterProfile(ctx context.Context, acct models.Account, p models.DaterProfile) error {
	p = withPhotos(p)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dater_profiles (id, bio, photos) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET bio = EXCLUDED.bio, photos = EXCLUDED.photos, updated_at = CURRENT_TIMESTAMP`,
		acct.ID, p.Bio, pq.Array(p.Photos))
	if err != nil {
		return fmt.Errorf("failed to save dater profile: %w", err)
	}
	return nil
}
