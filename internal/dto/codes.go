package dto

// ReferenceNumberResponse returns the next sequential reference number for a
// register.
type ReferenceNumberResponse struct {
	Direction       string `json:"direction"`
	ReferenceNumber string `json:"reference_number"`
}

// SubjectCodeResponse returns the next proposed outgoing subject code split
// into its two segments.
type SubjectCodeResponse struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
	Code   string `json:"code"`
}

// FollowUpCodeResponse returns the follow-up code that would be assigned to
// the next follow-up of a correspondence record. It is recomputed on every
// call, never cached.
type FollowUpCodeResponse struct {
	Code string `json:"code"`
}
