package models

// Role classifies an account and decides which dashboard it may open.
type Role string

const (
	RoleDater   Role = "dater"
	RoleCurator Role = "curator"
)

// ParseRole returns the role named by s, or false if s is not a role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDater, RoleCurator:
		return Role(s), true
	}
	return "", false
}

// DashboardPath is the route of the role's dashboard.
func (r Role) DashboardPath() string {
	if r == RoleCurator {
		return "/curator"
	}
	return "/dater"
}

// Account is the signed-in identity as far as this service needs it.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"-"`
}

// Profile is a row of the profiles table.
type Profile struct {
	ID   string `json:"id" db:"id"`
	Role Role   `json:"role" db:"role"`
}

// DaterProfile is a row of the dater_profiles table.
type DaterProfile struct {
	ID     string   `json:"id" db:"id"`
	Bio    string   `json:"bio" db:"bio"`
	Photos []string `json:"photos" db:"-"`
}
