package models

import "time"

// FollowUpStatus captures the lifecycle states of a follow-up.
type FollowUpStatus string

const (
	FollowUpStatusPending    FollowUpStatus = "pending"
	FollowUpStatusInProgress FollowUpStatus = "in-progress"
	FollowUpStatusClosed     FollowUpStatus = "closed"
)

// Valid reports whether the status is a known lifecycle state.
func (s FollowUpStatus) Valid() bool {
	return s == FollowUpStatusPending || s == FollowUpStatusInProgress || s == FollowUpStatusClosed
}

// FollowUp is a tracked action item attached to exactly one correspondence
// record. Its code is derived from the owning letter's subject code and a
// per-letter sequence counter.
type FollowUp struct {
	ID                 string         `db:"id" json:"id"`
	Code               string         `db:"follow_up_code" json:"follow_up_code"`
	CorrespondenceType Direction      `db:"correspondence_type" json:"correspondence_type"`
	CorrespondenceID   string         `db:"correspondence_id" json:"correspondence_id"`
	FollowUpDate       string         `db:"follow_up_date" json:"follow_up_date"`
	ActionRequired     string         `db:"action_required" json:"action_required"`
	ResponsiblePerson  string         `db:"responsible_person" json:"responsible_person"`
	Status             FollowUpStatus `db:"status" json:"status"`
	Notes              *string        `db:"notes" json:"notes,omitempty"`
	CreatedBy          *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// FollowUpFilter constrains follow-up listings.
type FollowUpFilter struct {
	CorrespondenceType *Direction
	CorrespondenceID   string
	Status             *FollowUpStatus
	Page               int
	PageSize           int
}

// FollowUpPatch carries optional follow-up field updates; only non-nil
// fields change on save.
type FollowUpPatch struct {
	FollowUpDate      *string
	ActionRequired    *string
	ResponsiblePerson *string
	Status            *FollowUpStatus
	Notes             *string
}

// Empty reports whether the patch carries no changes.
func (p FollowUpPatch) Empty() bool {
	return p.FollowUpDate == nil && p.ActionRequired == nil && p.ResponsiblePerson == nil &&
		p.Status == nil && p.Notes == nil
}
