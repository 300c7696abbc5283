package dto

// Statistics is the dashboard summary computed from both registers and the
// follow-up table.
type Statistics struct {
	TotalIncoming     int `json:"total_incoming"`
	TotalOutgoing     int `json:"total_outgoing"`
	NewIncoming       int `json:"new_incoming"`
	DraftOutgoing     int `json:"draft_outgoing"`
	PendingFollowUps  int `json:"pending_follow_ups"`
	IncomingThisMonth int `json:"incoming_this_month"`
	OutgoingThisMonth int `json:"outgoing_this_month"`
}
