package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
)

// Rows is the part of the Supabase client RESTStore needs.
type Rows interface {
	UpsertRow(accessToken, table string, row any) error
	SelectRow(accessToken, table, columns, id string, dest any) error
}

// RESTStore talks to PostgREST with the account's own token so row-level
// security applies.
type RESTStore struct {
	rows Rows
}

func NewRESTStore(rows Rows) *RESTStore {
	return &RESTStore{rows: rows}
}

func (s *RESTStore) Role(_ context.Context, acct models.Account) (models.Role, error) {
	var row models.Profile
	if err := s.rows.SelectRow(acct.AccessToken, profilesTable, "role", acct.ID, &row); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	role, ok := models.ParseRole(string(row.Role))
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func (s *RESTStore) SetRole(_ context.Context, acct models.Account, role models.Role) error {
	if _, ok := models.ParseRole(string(role)); !ok {
		return fmt.Errorf("invalid role %q", role)
	}
	return s.rows.UpsertRow(acct.AccessToken, profilesTable, models.Profile{ID: acct.ID, Role: role})
}

func (s *RESTStore) DaterProfile(_ context.Context, acct models.Account) (models.DaterProfile, error) {
	var row models.DaterProfile
	if err := s.rows.SelectRow(acct.AccessToken, daterProfilesTable, "id,bio,photos", acct.ID, &row); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return models.DaterProfile{ID: acct.ID, Photos: []string{}}, ErrNotFound
		}
		return models.DaterProfile{}, err
	}
	row.ID = acct.ID
	return withPhotos(row), nil
}

func (s *RESTStore) SaveDaterProfile(_ context.Context, acct models.Account, p models.DaterProfile) error {
	p.ID = acct.ID
	return s.rows.UpsertRow(acct.AccessToken, daterProfilesTable, withPhotos(p))
}
