package supabase

import (
	"net/http"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// User is the part of the GoTrue user this service reads.
type User struct {
	ID    string
	Email string
}

// Session is a signed-in GoTrue session.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

func toUser(u types.User) User {
	return User{ID: u.ID.String(), Email: u.Email}
}

func toSession(s types.Session) Session {
	expiresAt := time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	if s.ExpiresAt > 0 {
		expiresAt = time.Unix(s.ExpiresAt, 0)
	}
	return Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         toUser(s.User),
	}
}

// redirectTransport adds redirect_to to every request. gotrue-go has no
// field for it on signup and recover.
type redirectTransport struct {
	base       http.RoundTripper
	redirectTo string
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	q := req.URL.Query()
	q.Set("redirect_to", t.redirectTo)
	req.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(req)
}

func (c *Client) authRedirectingTo(redirectTo string) gotrue.Client {
	if redirectTo == "" {
		return c.auth
	}
	return c.auth.WithClient(http.Client{
		Timeout:   requestTimeout,
		Transport: redirectTransport{base: http.DefaultTransport, redirectTo: redirectTo},
	})
}

// SignUp registers an account. The returned session is nil when the project
// requires email confirmation first.
func (c *Client) SignUp(email, password, redirectTo string) (*Session, error) {
	res, err := c.authRedirectingTo(redirectTo).Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, authError(err)
	}
	if res.AccessToken == "" {
		return nil, nil
	}
	s := toSession(res.Session)
	return &s, nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(email, password string) (Session, error) {
	res, err := c.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return Session{}, authError(err)
	}
	return toSession(res.Session), nil
}

// Refresh trades a refresh token for a new session.
func (c *Client) Refresh(refreshToken string) (Session, error) {
	res, err := c.auth.RefreshToken(refreshToken)
	if err != nil {
		return Session{}, authError(err)
	}
	return toSession(res.Session), nil
}

// SignOut revokes the session's refresh tokens.
func (c *Client) SignOut(accessToken string) error {
	return authError(c.auth.WithToken(accessToken).Logout())
}

// GetUser returns the account the access token belongs to.
func (c *Client) GetUser(accessToken string) (User, error) {
	res, err := c.auth.WithToken(accessToken).GetUser()
	if err != nil {
		return User{}, authError(err)
	}
	return toUser(res.User), nil
}

// SendPasswordReset emails a recovery link that lands on redirectTo.
func (c *Client) SendPasswordReset(email, redirectTo string) error {
	return authError(c.authRedirectingTo(redirectTo).Recover(types.RecoverRequest{Email: email}))
}

// ExchangeRecoveryCode verifies the token from a recovery email and returns
// the session it grants.
func (c *Client) ExchangeRecoveryCode(code, redirectTo string) (Session, error) {
	res, err := c.auth.Verify(types.VerifyRequest{
		Type:       types.VerificationTypeRecovery,
		Token:      code,
		RedirectTo: redirectTo,
	})
	if err != nil {
		return Session{}, authError(err)
	}
	if res.Error != "" || res.AccessToken == "" {
		return Session{}, &Error{
			Code:    firstNonEmpty(res.ErrorCode, res.Error),
			Message: firstNonEmpty(res.ErrorDescription, res.Error, "Your reset link is invalid or has expired."),
		}
	}

	user, err := c.GetUser(res.AccessToken)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
		User:         user,
	}, nil
}

// UpdatePassword sets a new password for the signed-in account.
func (c *Client) UpdatePassword(accessToken, password string) error {
	_, err := c.auth.WithToken(accessToken).UpdateUser(types.UpdateUserRequest{Password: &password})
	return authError(err)
}
