package domain

import "time"

// Routing keys of the events the workflow emits.
const (
	EventProofSubmitted = "proof.submitted"
	EventProofApproved  = "proof.approved"
	EventProofDisputed  = "proof.disputed"
)

type ProofSubmittedEvent struct {
	BookingID       string    `json:"booking_id"`
	ProofID         string    `json:"proof_id"`
	SubmittedBy     string    `json:"submitted_by"`
	PhotoCount      int       `json:"photo_count"`
	SubmittedAt     time.Time `json:"submitted_at"`
	AutoApprovalDue time.Time `json:"auto_approval_due"`
}

type ProofApprovedEvent struct {
	BookingID   string    `json:"booking_id"`
	ProofID     string    `json:"proof_id"`
	Auto        bool      `json:"auto"`
	ApprovedBy  string    `json:"approved_by,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	ApprovedAt  time.Time `json:"approved_at"`
	TotalPayout int64     `json:"total_payout"`
}

type ProofDisputedEvent struct {
	BookingID   string    `json:"booking_id"`
	ProofID     string    `json:"proof_id"`
	IssueID     string    `json:"issue_id"`
	IssueType   string    `json:"issue_type"`
	SubmittedAt time.Time `json:"submitted_at"`
	DisputedAt  time.Time `json:"disputed_at"`
}
