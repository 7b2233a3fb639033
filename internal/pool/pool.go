// Package pool implements the candidate list mutations of both dashboards.
// Lists are values: every mutation returns a new slice and leaves the input
// untouched.
package pool

import (
	"errors"
	"slices"
	"strings"

	"github.com/illegalcall/tracys-match/internal/models"
)

// DefaultNote is stored when a curator adds someone without a note.
const DefaultNote = "Added without a note."

var (
	ErrNotFound      = errors.New("candidate not found")
	ErrInvalidStatus = errors.New("invalid candidate status")
	ErrNameRequired  = errors.New("candidate name is required")
)

// CuratorSeed is the mock list a curator starts with.
func CuratorSeed() []models.Candidate {
	return []models.Candidate{
		{ID: 1, Name: "Alex, 29", Note: "Friend from the climbing gym.", Status: models.StatusUndecided},
		{ID: 2, Name: "Jamie, 32", Note: "Works with my sister, kind and funny.", Status: models.StatusUndecided},
	}
}

// DaterSeed is the mock pool a dater starts with.
func DaterSeed() []models.Candidate {
	return []models.Candidate{
		{
			ID:      1,
			Name:    "Priya, 31",
			Context: "Met through college friend, values family and service.",
			Note:    "Green flags: communicates clearly, shows up early, open about therapy.",
			Status:  models.StatusConsidering,
		},
		{
			ID:      2,
			Name:    "Marco, 33",
			Context: "Your mentor's coworker, steady, loves cooking for friends.",
			Note:    "Green flags: asks great questions, patient, financially stable.",
			Status:  models.StatusIntro,
		},
		{
			ID:      3,
			Name:    "Sasha, 30",
			Context: "Running group, empathetic and big on community events.",
			Note:    "Green flags: transparent about goals, loves conflict-free communication.",
			Status:  models.StatusAccepted,
		},
	}
}

// NextID returns an id larger than every id in list.
func NextID(list []models.Candidate) int {
	next := 1
	for _, c := range list {
		if c.ID >= next {
			next = c.ID + 1
		}
	}
	return next
}

// Add appends a new undecided candidate built from the curator's form.
func Add(list []models.Candidate, name, note string) ([]models.Candidate, models.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return list, models.Candidate{}, ErrNameRequired
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultNote
	}

	c := models.Candidate{
		ID:     NextID(list),
		Name:   name,
		Note:   note,
		Status: models.StatusUndecided,
	}
	out := append(slices.Clone(list), c)
	return out, c, nil
}

// SetStatus replaces the status of the candidate with the given id. The
// status must belong to role's set.
func SetStatus(list []models.Candidate, role models.Role, id int, status models.CandidateStatus) ([]models.Candidate, models.Candidate, error) {
	if !slices.Contains(models.Statuses(role), status) {
		return list, models.Candidate{}, ErrInvalidStatus
	}

	i := slices.IndexFunc(list, func(c models.Candidate) bool { return c.ID == id })
	if i < 0 {
		return list, models.Candidate{}, ErrNotFound
	}

	out := slices.Clone(list)
	out[i].Status = status
	return out, out[i], nil
}
