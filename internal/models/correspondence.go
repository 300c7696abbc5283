package models

import "time"

// Direction distinguishes the two parallel correspondence registers.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// Valid reports whether the direction is one of the two known registers.
func (d Direction) Valid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Prefix returns the code prefix used when composing follow-up codes.
func (d Direction) Prefix() string {
	if d == DirectionIncoming {
		return "IN"
	}
	return "OUT"
}

// Priority levels shared by both registers.
type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityImportant Priority = "important"
	PriorityNormal    Priority = "normal"
)

// Valid reports whether the priority is a known level.
func (p Priority) Valid() bool {
	return p == PriorityUrgent || p == PriorityImportant || p == PriorityNormal
}

// IncomingStatus enumerates incoming register states.
type IncomingStatus string

const (
	IncomingStatusNew         IncomingStatus = "new"
	IncomingStatusUnderReview IncomingStatus = "under-review"
	IncomingStatusReplied     IncomingStatus = "replied"
	IncomingStatusArchived    IncomingStatus = "archived"
)

// Valid reports whether the status belongs to the incoming register.
func (s IncomingStatus) Valid() bool {
	switch s {
	case IncomingStatusNew, IncomingStatusUnderReview, IncomingStatusReplied, IncomingStatusArchived:
		return true
	}
	return false
}

// OutgoingStatus enumerates outgoing register states.
type OutgoingStatus string

const (
	OutgoingStatusDraft    OutgoingStatus = "draft"
	OutgoingStatusSent     OutgoingStatus = "sent"
	OutgoingStatusReceived OutgoingStatus = "received"
	OutgoingStatusArchived OutgoingStatus = "archived"
)

// Valid reports whether the status belongs to the outgoing register.
func (s OutgoingStatus) Valid() bool {
	switch s {
	case OutgoingStatusDraft, OutgoingStatusSent, OutgoingStatusReceived, OutgoingStatusArchived:
		return true
	}
	return false
}

// Incoming represents a record in the incoming correspondence register.
type Incoming struct {
	ID                string         `db:"id" json:"id"`
	ReferenceNumber   string         `db:"reference_number" json:"reference_number"`
	SubjectCode       *string        `db:"subject_code" json:"subject_code,omitempty"`
	Subject           string         `db:"subject" json:"subject"`
	Sender            string         `db:"sender" json:"sender"`
	SenderDepartment  *string        `db:"sender_department" json:"sender_department,omitempty"`
	ReceivedDate      string         `db:"received_date" json:"received_date"`
	Priority          Priority       `db:"priority" json:"priority"`
	Status            IncomingStatus `db:"status" json:"status"`
	Content           *string        `db:"content" json:"content,omitempty"`
	Notes             *string        `db:"notes" json:"notes,omitempty"`
	ResponsiblePerson *string        `db:"responsible_person" json:"responsible_person,omitempty"`
	CreatedBy         *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Outgoing represents a record in the outgoing correspondence register.
// Outgoing letters may reference the incoming record they reply to.
type Outgoing struct {
	ID                  string         `db:"id" json:"id"`
	ReferenceNumber     string         `db:"reference_number" json:"reference_number"`
	SubjectCode         *string        `db:"subject_code" json:"subject_code,omitempty"`
	Subject             string         `db:"subject" json:"subject"`
	Recipient           string         `db:"recipient" json:"recipient"`
	RecipientDepartment *string        `db:"recipient_department" json:"recipient_department,omitempty"`
	SentDate            string         `db:"sent_date" json:"sent_date"`
	Priority            Priority       `db:"priority" json:"priority"`
	Status              OutgoingStatus `db:"status" json:"status"`
	Content             *string        `db:"content" json:"content,omitempty"`
	Notes               *string        `db:"notes" json:"notes,omitempty"`
	RecipientEngineer   *string        `db:"recipient_engineer" json:"recipient_engineer,omitempty"`
	ResponsibleEngineer *string        `db:"responsible_engineer" json:"responsible_engineer,omitempty"`
	RelatedIncomingID   *string        `db:"related_incoming_id" json:"related_incoming_id,omitempty"`
	CreatedBy           *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// CorrespondenceFilter constrains register listings. Listings are always
// ordered by letter date descending.
type CorrespondenceFilter struct {
	Status   string
	Priority *Priority
	Search   string
	Page     int
	PageSize int
}

// IncomingPatch carries optional incoming field updates.
type IncomingPatch struct {
	ReferenceNumber   *string
	SubjectCode       *string
	Subject           *string
	Sender            *string
	SenderDepartment  *string
	ReceivedDate      *string
	Priority          *Priority
	Status            *IncomingStatus
	Content           *string
	Notes             *string
	ResponsiblePerson *string
}

// OutgoingPatch carries optional outgoing field updates.
type OutgoingPatch struct {
	ReferenceNumber     *string
	SubjectCode         *string
	Subject             *string
	Recipient           *string
	RecipientDepartment *string
	SentDate            *string
	Priority            *Priority
	Status              *OutgoingStatus
	Content             *string
	Notes               *string
	RecipientEngineer   *string
	ResponsibleEngineer *string
	RelatedIncomingID   *string
}
