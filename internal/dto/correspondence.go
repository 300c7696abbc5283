package dto

// CreateIncomingRequest is the payload for registering an incoming letter.
// Subject code segments are free entry, validated for format only. An empty
// reference number is filled from the sequence generator.
type CreateIncomingRequest struct {
	ReferenceNumber   string  `json:"reference_number,omitempty"`
	CodePrefix        string  `json:"code_prefix,omitempty"`
	CodeSuffix        string  `json:"code_suffix,omitempty"`
	Subject           string  `json:"subject" validate:"required"`
	Sender            string  `json:"sender" validate:"required"`
	SenderDepartment  *string `json:"sender_department,omitempty"`
	ReceivedDate      string  `json:"received_date" validate:"required,datetime=2006-01-02"`
	Priority          string  `json:"priority" validate:"omitempty,oneof=urgent important normal"`
	Status            string  `json:"status" validate:"omitempty,oneof=new under-review replied archived"`
	Content           *string `json:"content,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	ResponsiblePerson *string `json:"responsible_person,omitempty"`
}

// UpdateIncomingRequest carries optional incoming field updates.
type UpdateIncomingRequest struct {
	ReferenceNumber   *string `json:"reference_number,omitempty"`
	CodePrefix        *string `json:"code_prefix,omitempty"`
	CodeSuffix        *string `json:"code_suffix,omitempty"`
	Subject           *string `json:"subject,omitempty"`
	Sender            *string `json:"sender,omitempty"`
	SenderDepartment  *string `json:"sender_department,omitempty"`
	ReceivedDate      *string `json:"received_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Priority          *string `json:"priority,omitempty" validate:"omitempty,oneof=urgent important normal"`
	Status            *string `json:"status,omitempty" validate:"omitempty,oneof=new under-review replied archived"`
	Content           *string `json:"content,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	ResponsiblePerson *string `json:"responsible_person,omitempty"`
}

// CreateOutgoingRequest is the payload for registering an outgoing letter.
// Empty reference number or subject code segments are filled from the
// generators.
type CreateOutgoingRequest struct {
	ReferenceNumber     string  `json:"reference_number,omitempty"`
	CodePrefix          string  `json:"code_prefix,omitempty"`
	CodeSuffix          string  `json:"code_suffix,omitempty"`
	Subject             string  `json:"subject" validate:"required"`
	Recipient           string  `json:"recipient" validate:"required"`
	RecipientDepartment *string `json:"recipient_department,omitempty"`
	SentDate            string  `json:"sent_date" validate:"required,datetime=2006-01-02"`
	Priority            string  `json:"priority" validate:"omitempty,oneof=urgent important normal"`
	Status              string  `json:"status" validate:"omitempty,oneof=draft sent received archived"`
	Content             *string `json:"content,omitempty"`
	Notes               *string `json:"notes,omitempty"`
	RecipientEngineer   *string `json:"recipient_engineer,omitempty"`
	ResponsibleEngineer *string `json:"responsible_engineer,omitempty"`
	RelatedIncomingID   *string `json:"related_incoming_id,omitempty"`
}

// UpdateOutgoingRequest carries optional outgoing field updates.
type UpdateOutgoingRequest struct {
	ReferenceNumber     *string `json:"reference_number,omitempty"`
	CodePrefix          *string `json:"code_prefix,omitempty"`
	CodeSuffix          *string `json:"code_suffix,omitempty"`
	Subject             *string `json:"subject,omitempty"`
	Recipient           *string `json:"recipient,omitempty"`
	RecipientDepartment *string `json:"recipient_department,omitempty"`
	SentDate            *string `json:"sent_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Priority            *string `json:"priority,omitempty" validate:"omitempty,oneof=urgent important normal"`
	Status              *string `json:"status,omitempty" validate:"omitempty,oneof=draft sent received archived"`
	Content             *string `json:"content,omitempty"`
	Notes               *string `json:"notes,omitempty"`
	RecipientEngineer   *string `json:"recipient_engineer,omitempty"`
	ResponsibleEngineer *string `json:"responsible_engineer,omitempty"`
	RelatedIncomingID   *string `json:"related_incoming_id,omitempty"`
}

// CorrespondenceQuery carries register list filters from the query string.
type CorrespondenceQuery struct {
	Status   string
	Priority string
	Search   string
	Page     int
	PageSize int
}
