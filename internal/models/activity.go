package models

import "time"

type ActivityKind string

const (
	ActivityRoleChosen    ActivityKind = "role_chosen"
	ActivityCandidateAdd  ActivityKind = "candidate_added"
	ActivityStatusChanged ActivityKind = "status_changed"
	ActivityProfileSaved  ActivityKind = "profile_saved"
	ActivityPhotoUploaded ActivityKind = "photo_uploaded"
)

// ActivityEvent is what the activity feed stores and the worker consumes.
type ActivityEvent struct {
	AccountID string       `json:"account_id"`
	Kind      ActivityKind `json:"kind"`
	Subject   string       `json:"subject,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	At        time.Time    `json:"at"`
}

// Summary renders the event as one line for the dashboard.
func (e ActivityEvent) Summary() string {
	switch e.Kind {
	case ActivityRoleChosen:
		return "Joined as " + e.Detail
	case ActivityCandidateAdd:
		return "Added " + e.Subject
	case ActivityStatusChanged:
		return e.Subject + " marked " + CandidateStatus(e.Detail).Label()
	case ActivityProfileSaved:
		return "Profile updated"
	case ActivityPhotoUploaded:
		return "Uploaded " + e.Detail
	}
	return string(e.Kind)
}
