package dto

// CreateFollowUpRequest is the payload for creating a follow-up. The
// follow-up code and initial status are derived server-side; callers never
// supply them.
type CreateFollowUpRequest struct {
	CorrespondenceType string  `json:"correspondence_type" validate:"required,oneof=incoming outgoing"`
	CorrespondenceID   string  `json:"correspondence_id" validate:"required"`
	FollowUpDate       string  `json:"follow_up_date" validate:"required,datetime=2006-01-02"`
	ActionRequired     string  `json:"action_required" validate:"required"`
	ResponsiblePerson  string  `json:"responsible_person" validate:"required"`
	Notes              *string `json:"notes,omitempty"`
}

// UpdateFollowUpRequest is the single combined save operation for a
// follow-up: field edits and status transitions travel together and produce
// one audit entry. ConfirmClose must be set for any transition to closed.
// ReauthPassword re-verifies the acting user when editing a closed record.
type UpdateFollowUpRequest struct {
	FollowUpDate      *string `json:"follow_up_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ActionRequired    *string `json:"action_required,omitempty"`
	ResponsiblePerson *string `json:"responsible_person,omitempty"`
	Status            *string `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress closed"`
	Notes             *string `json:"notes,omitempty"`
	ConfirmClose      bool    `json:"confirm_close,omitempty"`
	ReauthPassword    string  `json:"reauth_password,omitempty"`
}

// FollowUpQuery carries list filters from the query string.
type FollowUpQuery struct {
	CorrespondenceType string
	CorrespondenceID   string
	Status             string
	Page               int
	PageSize           int
}
