package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
	"github.com/illegalcall/tracys-match/internal/profiles"
)

func (s *Server) handleChooseRolePage(c *fiber.Ctx) error {
	_, data := sessionFrom(c)

	current, err := s.profiles.Role(c.UserContext(), data.Account())
	if err != nil && !errors.Is(err, profiles.ErrNotFound) {
		s.logger.Error("Failed to read role", "user_id", data.UserID, "error", err)
	}

	return c.Render("choose_role", fiber.Map{
		"Title":   "Choose your role",
		"Email":   data.Email,
		"Current": string(current),
	})
}

func (s *Server) handleChooseRole(c *fiber.Ctx) error {
	_, data := sessionFrom(c)

	role, ok := models.ParseRole(c.FormValue("role"))
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).Render("choose_role", fiber.Map{
			"Title":   "Choose your role",
			"Email":   data.Email,
			"Current": "",
			"Message": msgChooseRole,
			"Tone":    toneError,
		})
	}

	if err := s.profiles.SetRole(c.UserContext(), data.Account(), role); err != nil {
		s.logger.Error("Failed to save role", "user_id", data.UserID, "role", role, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).Render("choose_role", fiber.Map{
			"Title":   "Choose your role",
			"Email":   data.Email,
			"Current": string(role),
			"Message": supabase.Message(err),
			"Tone":    toneError,
		})
	}

	s.logger.Info("Role chosen", "user_id", data.UserID, "role", role)
	s.record(c, models.ActivityEvent{
		AccountID: data.UserID,
		Kind:      models.ActivityRoleChosen,
		Detail:    string(role),
	})
	return c.Redirect(role.DashboardPath(), fiber.StatusSeeOther)
}

// record publishes an activity event. Failures are logged and never reach
// the visitor.
func (s *Server) record(c *fiber.Ctx, ev models.ActivityEvent) {
	if s.activity == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := s.activity.Publish(c.UserContext(), ev); err != nil {
		s.logger.Error("Failed to publish activity", "kind", ev.Kind, "user_id", ev.AccountID, "error", err)
	}
}

// recentActivity is the dashboard's "Recent activity" list.
func (s *Server) recentActivity(c *fiber.Ctx, accountID string) []string {
	events, err := s.feed.Recent(c.UserContext(), accountID, 5)
	if err != nil {
		s.logger.Error("Failed to read activity", "user_id", accountID, "error", err)
		return nil
	}
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, ev.Summary())
	}
	return lines
}
