package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/pool"
	"github.com/illegalcall/tracys-match/internal/session"
)

// action is one status button under a candidate.
type action struct {
	Label  string
	Status models.CandidateStatus
}

var actions = map[models.Role][]action{
	models.RoleCurator: {
		{Label: "Add to pool", Status: models.StatusAdded},
		{Label: "Pass", Status: models.StatusPassed},
	},
	models.RoleDater: {
		{Label: "Request intro", Status: models.StatusIntro},
		{Label: "Shortlist", Status: models.StatusAccepted},
		{Label: "Pass", Status: models.StatusPassed},
	},
}

type candidateView struct {
	models.Candidate
	Label   string
	Actions []action
}

func candidateViews(role models.Role, list []models.Candidate) []candidateView {
	views := make([]candidateView, 0, len(list))
	for _, c := range list {
		var available []action
		for _, a := range actions[role] {
			if a.Status != c.Status {
				available = append(available, a)
			}
		}
		views = append(views, candidateView{Candidate: c, Label: c.Status.Label(), Actions: available})
	}
	return views
}

// poolFor returns the role's list for this session, seeding it on first use.
func (s *Server) poolFor(c *fiber.Ctx, sid string, data *session.Data, role models.Role) []models.Candidate {
	if list := data.Pool(role); list != nil {
		return list
	}

	seed := pool.DaterSeed()
	if role == models.RoleCurator {
		seed = pool.CuratorSeed()
	}
	data.SetPool(role, seed)
	if err := s.sessions.Save(c.UserContext(), sid, data); err != nil {
		s.logger.Error("Failed to seed pool", "user_id", data.UserID, "role", role, "error", err)
	}
	return seed
}

// setStatus applies a status button to the session's pool. It returns the
// message to show when the change is rejected.
func (s *Server) setStatus(c *fiber.Ctx, sid string, data *session.Data, role models.Role) (string, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return msgUnknownEntry, nil
	}
	status := models.CandidateStatus(c.FormValue("status"))

	list, changed, err := pool.SetStatus(s.poolFor(c, sid, data, role), role, id, status)
	switch err {
	case nil:
	case pool.ErrNotFound:
		return msgUnknownEntry, nil
	case pool.ErrInvalidStatus:
		return msgInvalidStatus, nil
	default:
		return "", err
	}

	data.SetPool(role, list)
	if err := s.sessions.Save(c.UserContext(), sid, data); err != nil {
		return "", err
	}

	s.record(c, models.ActivityEvent{
		AccountID: data.UserID,
		Kind:      models.ActivityStatusChanged,
		Subject:   changed.Name,
		Detail:    string(changed.Status),
	})
	return "", nil
}
