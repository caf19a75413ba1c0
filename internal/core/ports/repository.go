package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, at time.Time) error
}

// ProofRepository owns the single-writer guarantee: Approve and Dispute
// only succeed while the stored disposition is still PENDING, and return
// a domain conflict otherwise.
type ProofRepository interface {
	CreateProof(ctx context.Context, proof *domain.InstallationProof) error
	GetByID(ctx context.Context, proofID uuid.UUID) (*domain.InstallationProof, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.InstallationProof, error)
	Approve(ctx context.Context, approval domain.Approval) error
	Dispute(ctx context.Context, report *domain.IssueReport) error
	ListDueForAutoApproval(ctx context.Context, submittedBefore time.Time, limit int) ([]uuid.UUID, error)
}

type PayoutRepository interface {
	GetByProof(ctx context.Context, proofID uuid.UUID) (*domain.Payout, error)
}
