package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/pool"
	"github.com/illegalcall/tracys-match/internal/session"
)

func (s *Server) renderCurator(c *fiber.Ctx, status int, sid string, data *session.Data, extra fiber.Map) error {
	page := fiber.Map{
		"Title":      "Curator dashboard",
		"Email":      data.Email,
		"Candidates": candidateViews(models.RoleCurator, s.poolFor(c, sid, data, models.RoleCurator)),
		"Activity":   s.recentActivity(c, data.UserID),
	}
	for k, v := range extra {
		page[k] = v
	}
	return c.Status(status).Render("curator", page)
}

func (s *Server) handleCurator(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)
	return s.renderCurator(c, fiber.StatusOK, sid, data, nil)
}

func (s *Server) handleAddCandidate(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)
	name, note := c.FormValue("name"), c.FormValue("note")

	list, added, err := pool.Add(s.poolFor(c, sid, data, models.RoleCurator), name, note)
	if errors.Is(err, pool.ErrNameRequired) {
		return s.renderCurator(c, fiber.StatusUnprocessableEntity, sid, data, fiber.Map{
			"Message": msgNameRequired,
			"Tone":    toneError,
			"Name":    name,
			"Note":    note,
		})
	}

	data.SetPool(models.RoleCurator, list)
	if err := s.sessions.Save(c.UserContext(), sid, data); err != nil {
		s.logger.Error("Failed to save pool", "user_id", data.UserID, "error", err)
		return fiber.ErrInternalServerError
	}

	s.logger.Info("Candidate added", "user_id", data.UserID, "candidate_id", added.ID)
	s.record(c, models.ActivityEvent{
		AccountID: data.UserID,
		Kind:      models.ActivityCandidateAdd,
		Subject:   added.Name,
	})
	return c.Redirect("/curator", fiber.StatusSeeOther)
}

func (s *Server) handleCuratorStatus(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)

	msg, err := s.setStatus(c, sid, data, models.RoleCurator)
	if err != nil {
		s.logger.Error("Failed to save pool", "user_id", data.UserID, "error", err)
		return fiber.ErrInternalServerError
	}
	if msg != "" {
		return s.renderCurator(c, fiber.StatusUnprocessableEntity, sid, data, fiber.Map{"Message": msg, "Tone": toneError})
	}
	return c.Redirect("/curator", fiber.StatusSeeOther)
}
