package models

// CandidateStatus is the decision state of a candidate in a pool.
type CandidateStatus string

// Curator side.
const (
	StatusUndecided CandidateStatus = "undecided"
	StatusAdded     CandidateStatus = "added"
	StatusPassed    CandidateStatus = "passed"
)

// Dater side. StatusPassed is shared.
const (
	StatusConsidering CandidateStatus = "considering"
	StatusIntro       CandidateStatus = "intro"
	StatusAccepted    CandidateStatus = "accepted"
)

// Candidate is a view-state entry of a pool. It is never written to the backend.
type Candidate struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Context string          `json:"context,omitempty"`
	Note    string          `json:"note"`
	Status  CandidateStatus `json:"status"`
}

// Statuses lists the statuses a role may assign, in display order.
func Statuses(r Role) []CandidateStatus {
	if r == RoleCurator {
		return []CandidateStatus{StatusUndecided, StatusAdded, StatusPassed}
	}
	return []CandidateStatus{StatusConsidering, StatusIntro, StatusPassed, StatusAccepted}
}

// Label is the badge text shown for a status.
func (s CandidateStatus) Label() string {
	switch s {
	case StatusUndecided:
		return "Undecided"
	case StatusAdded:
		return "Added to pool"
	case StatusPassed:
		return "Passed"
	case StatusConsidering:
		return "Considering"
	case StatusIntro:
		return "Intro requested"
	case StatusAccepted:
		return "Accepted"
	}
	return string(s)
}
