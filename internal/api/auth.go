package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
	"github.com/illegalcall/tracys-match/internal/session"
	"github.com/illegalcall/tracys-match/internal/validation"
)

// formPage renders one of the auth forms with a message.
func formPage(c *fiber.Ctx, status int, view string, data fiber.Map) error {
	return c.Status(status).Render(view, data)
}

func (s *Server) handleSignupPage(c *fiber.Ctx) error {
	return formPage(c, fiber.StatusOK, "signup", fiber.Map{"Title": "Create an account"})
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	page := fiber.Map{"Title": "Create an account", "Email": email}

	if msg := signupProblem(email, password, c.FormValue("confirm")); msg != "" {
		authAttempts.WithLabelValues("signup", "invalid").Inc()
		page["Message"], page["Tone"] = msg, toneError
		return formPage(c, fiber.StatusUnprocessableEntity, "signup", page)
	}

	s.logger.Info("Signup attempt", "email", email)

	auth, err := s.backend.SignUp(email, password, s.cfg.Server.SiteURL+"/choose-role")
	if err != nil {
		s.logger.Error("Signup failed", "email", email, "error", err)
		authAttempts.WithLabelValues("signup", "rejected").Inc()
		page["Message"], page["Tone"] = supabase.Message(err), toneError
		return formPage(c, fiber.StatusUnprocessableEntity, "signup", page)
	}

	authAttempts.WithLabelValues("signup", "ok").Inc()
	if auth == nil {
		page["Message"], page["Tone"] = msgConfirmEmail, toneSuccess
		return formPage(c, fiber.StatusOK, "signup", page)
	}

	if err := s.startSession(c, *auth, false); err != nil {
		s.logger.Error("Failed to start session", "error", err)
		return fiber.ErrInternalServerError
	}
	return c.Redirect("/choose-role", fiber.StatusSeeOther)
}

func (s *Server) handleLoginPage(c *fiber.Ctx) error {
	page := fiber.Map{"Title": "Log in"}
	if c.Query("updated") == "1" {
		page["Message"], page["Tone"] = msgPasswordSaved, toneSuccess
	}
	return formPage(c, fiber.StatusOK, "login", page)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	page := fiber.Map{"Title": "Log in", "Email": email}

	if msg := loginProblem(email, password); msg != "" {
		authAttempts.WithLabelValues("login", "invalid").Inc()
		page["Message"], page["Tone"] = msg, toneError
		return formPage(c, fiber.StatusUnprocessableEntity, "login", page)
	}

	// Log authentication attempt
	s.logger.Info("Authentication attempt", "email", email)

	auth, err := s.backend.SignIn(email, password)
	if err != nil {
		s.logger.Info("Authentication failed", "email", email, "error", err)
		authAttempts.WithLabelValues("login", "rejected").Inc()
		page["Message"], page["Tone"] = supabase.Message(err), toneError
		return formPage(c, fiber.StatusUnprocessableEntity, "login", page)
	}

	if err := s.startSession(c, auth, false); err != nil {
		s.logger.Error("Failed to start session", "error", err)
		return fiber.ErrInternalServerError
	}

	authAttempts.WithLabelValues("login", "ok").Inc()
	s.logger.Info("User successfully authenticated", "email", email)
	return c.Redirect("/choose-role", fiber.StatusSeeOther)
}

// handleLoginReset is the "send a password reset" button on the login form.
func (s *Server) handleLoginReset(c *fiber.Ctx) error {
	return s.sendResetLink(c, "login", msgLoginResetEmail, fiber.Map{"Title": "Log in"})
}

// handleResetRequest is the same action on the reset page.
func (s *Server) handleResetRequest(c *fiber.Ctx) error {
	return s.sendResetLink(c, "reset", msgResetEmail, fiber.Map{"Title": "Reset your password", "Ready": false})
}

func (s *Server) sendResetLink(c *fiber.Ctx, view, invalidEmail string, page fiber.Map) error {
	email := strings.TrimSpace(c.FormValue("email"))
	page["Email"] = email

	if !validation.IsValidEmail(email) {
		authAttempts.WithLabelValues("reset_link", "invalid").Inc()
		page["Message"], page["Tone"] = invalidEmail, toneError
		return formPage(c, fiber.StatusUnprocessableEntity, view, page)
	}

	if err := s.backend.SendPasswordReset(email, s.cfg.Server.SiteURL+"/reset-password"); err != nil {
		s.logger.Error("Password reset request failed", "email", email, "error", err)
		authAttempts.WithLabelValues("reset_link", "rejected").Inc()
		page["Message"], page["Tone"] = supabase.Message(err), toneError
		return formPage(c, fiber.StatusUnprocessableEntity, view, page)
	}

	authAttempts.WithLabelValues("reset_link", "ok").Inc()
	page["Message"], page["Tone"], page["ResetSent"] = msgResetSent, toneSuccess, true
	return formPage(c, fiber.StatusOK, view, page)
}

// handleResetPage exchanges a recovery code when one is given, then shows
// the new-password form to anyone with a session and the request form to
// everyone else.
func (s *Server) handleResetPage(c *fiber.Ctx) error {
	page := fiber.Map{"Title": "Reset your password"}

	if code := c.Query("code"); code != "" && c.Query("type") == "recovery" {
		auth, err := s.backend.ExchangeRecoveryCode(code, s.cfg.Server.SiteURL+"/reset-password")
		if err != nil {
			s.logger.Info("Recovery code rejected", "error", err)
			page["Ready"], page["Message"], page["Tone"] = false, supabase.Message(err), toneError
			return formPage(c, fiber.StatusUnprocessableEntity, "reset", page)
		}

		if sid, _, err := s.loadSession(c); err == nil {
			s.endSession(c, sid)
		}
		if err := s.startSession(c, auth, true); err != nil {
			s.logger.Error("Failed to start recovery session", "error", err)
			return fiber.ErrInternalServerError
		}
		return c.Redirect("/reset-password", fiber.StatusSeeOther)
	}

	_, _, err := s.loadSession(c)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		s.logger.Error("Failed to load session", "error", err)
	}
	page["Ready"] = err == nil
	return formPage(c, fiber.StatusOK, "reset", page)
}

func (s *Server) handleUpdatePassword(c *fiber.Ctx) error {
	page := fiber.Map{"Title": "Reset your password", "Ready": true}

	sid, data, err := s.loadSession(c)
	if err != nil {
		return c.Redirect("/reset-password", fiber.StatusSeeOther)
	}

	password := c.FormValue("password")
	if msg := passwordProblem(password, c.FormValue("confirm")); msg != "" {
		authAttempts.WithLabelValues("update_password", "invalid").Inc()
		page["Message"], page["Tone"] = msg, toneError
		return formPage(c, fiber.StatusUnprocessableEntity, "reset", page)
	}

	if err := s.refreshIfNeeded(c, sid, data); err != nil {
		s.logger.Info("Session refresh failed", "error", err)
	}

	if err := s.backend.UpdatePassword(data.AccessToken, password); err != nil {
		s.logger.Error("Password update failed", "error", err)
		authAttempts.WithLabelValues("update_password", "rejected").Inc()
		page["Message"], page["Tone"] = supabase.Message(err), toneError
		return formPage(c, fiber.StatusUnprocessableEntity, "reset", page)
	}

	authAttempts.WithLabelValues("update_password", "ok").Inc()
	if data.Recovery {
		s.endSession(c, sid)
	}
	return c.Redirect("/login?updated=1", fiber.StatusSeeOther)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	sid, data, err := s.loadSession(c)
	if err == nil {
		if err := s.backend.SignOut(data.AccessToken); err != nil {
			s.logger.Info("Backend sign-out failed", "error", err)
		}
	}
	s.endSession(c, sid)
	return c.Redirect("/login", fiber.StatusSeeOther)
}
