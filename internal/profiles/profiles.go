// Package profiles persists the role of every account and the dater's own
// profile (bio and photo URLs).
package profiles

import (
	"context"
	"errors"

	"github.com/illegalcall/tracys-match/internal/models"
)

const (
	profilesTable      = "profiles"
	daterProfilesTable = "dater_profiles"
)

// ErrNotFound means the account has no row yet.
var ErrNotFound = errors.New("profile not found")

// Store reads and writes profile rows on behalf of a signed-in account.
type Store interface {
	// Role returns ErrNotFound when no role was ever chosen.
	Role(ctx context.Context, acct models.Account) (models.Role, error)
	SetRole(ctx context.Context, acct models.Account, role models.Role) error
	// DaterProfile returns ErrNotFound when the dater never saved one.
	DaterProfile(ctx context.Context, acct models.Account) (models.DaterProfile, error)
	SaveDaterProfile(ctx context.Context, acct models.Account, p models.DaterProfile) error
}

// withPhotos never returns a nil photo list so the column is written as an
// empty array instead of null.
func withPhotos(p models.DaterProfile) models.DaterProfile {
	if p.Photos == nil {
		p.Photos = []string{}
	}
	return p
}
