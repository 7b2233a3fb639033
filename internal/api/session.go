package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
	"github.com/illegalcall/tracys-match/internal/profiles"
	"github.com/illegalcall/tracys-match/internal/session"
)

const (
	localSession   = "session"
	localSessionID = "sid"

	// refreshMargin is how close to expiry an access token is refreshed.
	refreshMargin = 60 * time.Second
)

// startSession stores a new server-side session for the signed-in account
// and sets the cookie pointing at it.
func (s *Server) startSession(c *fiber.Ctx, auth supabase.Session, recovery bool) error {
	data := &session.Data{
		UserID:       auth.User.ID,
		Email:        auth.User.Email,
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
		ExpiresAt:    auth.ExpiresAt,
		Recovery:     recovery,
	}

	sid, err := s.sessions.Create(c.UserContext(), data)
	if err != nil {
		return err
	}
	value, exp, err := s.tokens.Issue(sid)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// loadSession resolves the cookie to its session. It returns
// session.ErrNotFound when there is no usable session.
func (s *Server) loadSession(c *fiber.Ctx) (string, *session.Data, error) {
	value := c.Cookies(session.CookieName)
	if value == "" {
		return "", nil, session.ErrNotFound
	}
	sid, err := s.tokens.Parse(value)
	if err != nil {
		return "", nil, session.ErrNotFound
	}
	data, err := s.sessions.Get(c.UserContext(), sid)
	if err != nil {
		return "", nil, err
	}
	return sid, data, nil
}

// endSession drops the server-side session and expires the cookie.
func (s *Server) endSession(c *fiber.Ctx, sid string) {
	if sid != "" {
		if err := s.sessions.Delete(c.UserContext(), sid); err != nil {
			s.logger.Error("Failed to delete session", "error", err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// refreshIfNeeded renews the access token when it is about to expire.
func (s *Server) refreshIfNeeded(c *fiber.Ctx, sid string, data *session.Data) error {
	if !data.NeedsRefresh(time.Now(), refreshMargin) {
		return nil
	}

	fresh, err := s.backend.Refresh(data.RefreshToken)
	if err != nil {
		return err
	}
	data.AccessToken = fresh.AccessToken
	data.RefreshToken = fresh.RefreshToken
	data.ExpiresAt = fresh.ExpiresAt
	return s.sessions.Save(c.UserContext(), sid, data)
}

// currentUser checks the session against the backend. ok is false when the
// visitor has to sign in again; err is set for any other backend failure.
func (s *Server) currentUser(c *fiber.Ctx) (sid string, data *session.Data, ok bool, err error) {
	sid, data, err = s.loadSession(c)
	if errors.Is(err, session.ErrNotFound) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}
	if data.Recovery {
		return sid, nil, false, nil
	}

	if err := s.refreshIfNeeded(c, sid, data); err != nil {
		if isRejectedRefresh(err) {
			s.logger.Info("Refresh token rejected", "user_id", data.UserID, "error", err)
			s.endSession(c, sid)
			return "", nil, false, nil
		}
		return sid, data, false, err
	}

	user, err := s.backend.GetUser(data.AccessToken)
	if err != nil {
		if isUnauthorized(err) {
			s.endSession(c, sid)
			return "", nil, false, nil
		}
		return sid, data, false, err
	}
	data.UserID, data.Email = user.ID, user.Email
	return sid, data, true, nil
}

// requireSession lets any signed-in account through.
func (s *Server) requireSession(c *fiber.Ctx) error {
	sid, data, ok, err := s.currentUser(c)
	if err != nil {
		return s.renderError(c, err)
	}
	if !ok {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(localSessionID, sid)
	c.Locals(localSession, data)
	return c.Next()
}

// requireRole is the dashboard gate: no session goes to /login, a missing or
// different role goes to /choose-role.
func (s *Server) requireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid, data, ok, err := s.currentUser(c)
		if err != nil {
			gateDecisions.WithLabelValues(string(role), "error").Inc()
			return s.renderError(c, err)
		}
		if !ok {
			gateDecisions.WithLabelValues(string(role), "login").Inc()
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		current, err := s.profiles.Role(c.UserContext(), data.Account())
		if err != nil && !errors.Is(err, profiles.ErrNotFound) {
			gateDecisions.WithLabelValues(string(role), "error").Inc()
			return s.renderError(c, err)
		}
		if current != role {
			gateDecisions.WithLabelValues(string(role), "choose_role").Inc()
			return c.Redirect("/choose-role", fiber.StatusSeeOther)
		}

		gateDecisions.WithLabelValues(string(role), "ready").Inc()
		c.Locals(localSessionID, sid)
		c.Locals(localSession, data)
		return c.Next()
	}
}

// sessionFrom returns what the gate stored for the handler.
func sessionFrom(c *fiber.Ctx) (string, *session.Data) {
	sid, _ := c.Locals(localSessionID).(string)
	data, _ := c.Locals(localSession).(*session.Data)
	return sid, data
}

func isUnauthorized(err error) bool {
	var be *supabase.Error
	return errors.As(err, &be) && (be.Status == fiber.StatusUnauthorized || be.Status == fiber.StatusForbidden)
}

// isRejectedRefresh reports whether GoTrue refused the refresh token itself,
// as opposed to failing to answer.
func isRejectedRefresh(err error) bool {
	var be *supabase.Error
	return isUnauthorized(err) || (errors.As(err, &be) && be.Status == fiber.StatusBadRequest)
}
