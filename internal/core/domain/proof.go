package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Disposition string

const (
	ProofPending  Disposition = "PENDING"
	ProofApproved Disposition = "APPROVED"
	ProofDisputed Disposition = "DISPUTED"
)

func (d Disposition) IsTerminal() bool {
	return d == ProofApproved || d == ProofDisputed
}

// ApprovalSource tells who moved a proof to APPROVED.
type ApprovalSource string

const (
	ApprovedByAdvertiser ApprovalSource = "ADVERTISER"
	ApprovedByTimer      ApprovalSource = "AUTO_APPROVAL"
)

// Approver is either an advertiser (with an id) or the auto-approval timer.
type Approver struct {
	Source       ApprovalSource
	AdvertiserID uuid.UUID
}

func AdvertiserApproval(id uuid.UUID) Approver {
	return Approver{Source: ApprovedByAdvertiser, AdvertiserID: id}
}

func AutoApproval() Approver {
	return Approver{Source: ApprovedByTimer}
}

func (a Approver) IsAuto() bool { return a.Source == ApprovedByTimer }

// InstallationProof is one photo submission for a booking. It leaves
// PENDING exactly once.
type InstallationProof struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	SubmittedBy uuid.UUID
	PhotoURLs   []string
	Note        string
	SubmittedAt time.Time
	Status      Disposition
	ApprovedBy  *Approver
	ApprovedAt  *time.Time
	DisputedAt  *time.Time
	Version     int
}

// AutoApprovalDue is the instant from which the timer may approve.
func (p *InstallationProof) AutoApprovalDue() time.Time {
	return p.SubmittedAt.Add(AutoApprovalDelay)
}

func (p *InstallationProof) IsPending() bool {
	return p.Status == ProofPending
}

// ReviewOpen reports whether the advertiser may still dispute at now.
func (p *InstallationProof) ReviewOpen(now time.Time) bool {
	return p.IsPending() && now.Before(p.AutoApprovalDue())
}

// Approval is the state change applied atomically with the payout insert.
type Approval struct {
	ProofID    uuid.UUID
	Approver   Approver
	ApprovedAt time.Time
	// DueBefore guards auto-approvals: the proof must have been submitted
	// no later than this instant. Zero for advertiser approvals.
	DueBefore time.Time
	Payout    *Payout
}

type IssueType string

const (
	IssueWrongLocation     IssueType = "WRONG_LOCATION"
	IssuePoorQuality       IssueType = "POOR_QUALITY"
	IssueDamagedCreative   IssueType = "DAMAGED_CREATIVE"
	IssueNotVisible        IssueType = "NOT_VISIBLE"
	IssueSafety            IssueType = "SAFETY_ISSUE"
	IssueMisleadingListing IssueType = "MISLEADING_LISTING"
)

var issueTypes = map[IssueType]struct{}{
	IssueWrongLocation:     {},
	IssuePoorQuality:       {},
	IssueDamagedCreative:   {},
	IssueNotVisible:        {},
	IssueSafety:            {},
	IssueMisleadingListing: {},
}

func (t IssueType) Valid() bool {
	_, ok := issueTypes[t]
	return ok
}

// IssueReport is the advertiser's dispute of a pending proof.
type IssueReport struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	ProofID     uuid.UUID
	ReportedBy  uuid.UUID
	Type        IssueType
	Description string
	PhotoURLs   []string
	CreatedAt   time.Time
}

// ValidateIssue checks the dispute input before any photo is uploaded.
func ValidateIssue(t IssueType, description string, photoCount int) error {
	if !t.Valid() {
		return NewError(ErrInvalidIssueType, "unknown issue type", map[string]any{"issue_type": string(t)})
	}
	if n := len([]rune(description)); n < MinIssueDescriptionLen {
		return NewError(ErrDescriptionTooShort, "description must be at least 20 characters", map[string]any{
			"min_length": MinIssueDescriptionLen,
			"length":     n,
		})
	}
	if photoCount < MinIssuePhotos {
		return NewError(ErrNotEnoughPhotos, "at least 2 photos are required", map[string]any{
			"min_photos": MinIssuePhotos,
			"photos":     photoCount,
		})
	}
	if photoCount > MaxIssuePhotos {
		return TooManyPhotos(photoCount, MaxIssuePhotos)
	}
	return nil
}

func TooManyPhotos(n, limit int) *Error {
	return NewError(ErrTooManyPhotos, fmt.Sprintf("at most %d photos are allowed", limit), map[string]any{
		"max_photos": limit,
		"photos":     n,
	})
}

// ValidateProofPhotos enforces 1..5 photos per submission.
func ValidateProofPhotos(n int) error {
	if n == 0 {
		return NewError(ErrNoPhotos, "at least one photo is required", map[string]any{"photos": 0})
	}
	if n > MaxProofPhotos {
		return TooManyPhotos(n, MaxProofPhotos)
	}
	return nil
}
