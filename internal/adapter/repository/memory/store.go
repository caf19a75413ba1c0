// Package memory keeps bookings, proofs and payouts in process. It enforces
// the same guards as the Postgres schema: one PENDING proof per booking,
// transitions only out of PENDING, one payout per proof and per booking.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

type Store struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking
	proofs   map[uuid.UUID]domain.InstallationProof
	issues   map[uuid.UUID]domain.IssueReport
	payouts  map[uuid.UUID]domain.Payout
}

func NewStore() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]domain.Booking),
		proofs:   make(map[uuid.UUID]domain.InstallationProof),
		issues:   make(map[uuid.UUID]domain.IssueReport),
		payouts:  make(map[uuid.UUID]domain.Payout),
	}
}

// Bookings, Proofs and Payouts expose the store through the port shapes.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }
func (s *Store) Proofs() *ProofRepository     { return &ProofRepository{s: s} }
func (s *Store) Payouts() *PayoutRepository   { return &PayoutRepository{s: s} }

type BookingRepository struct{ s *Store }

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok {
		return nil, domain.Errorf(domain.ErrNotFound, "booking %s not found", bookingID)
	}
	return &b, nil
}

func (r *BookingRepository) CancelBooking(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[bookingID]
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "booking %s not found", bookingID)
	}
	if b.Status == domain.BookingCancelled {
		return nil
	}
	b.Status = domain.BookingCancelled
	b.CancelledAt = &at
	r.s.bookings[bookingID] = b
	return nil
}

type ProofRepository struct{ s *Store }

func (r *ProofRepository) CreateProof(ctx context.Context, proof *domain.InstallationProof) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.proofs {
		if p.BookingID == proof.BookingID && p.Status == domain.ProofPending {
			return domain.NewError(domain.ErrDuplicateActiveProof, "a proof is already awaiting review", map[string]any{
				"proof_id": p.ID.String(),
			})
		}
	}

	cp := *proof
	cp.PhotoURLs = append([]string(nil), proof.PhotoURLs...)
	r.s.proofs[proof.ID] = cp
	return nil
}

func (r *ProofRepository) GetByID(ctx context.Context, proofID uuid.UUID) (*domain.InstallationProof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.proofs[proofID]
	if !ok {
		return nil, domain.Errorf(domain.ErrNotFound, "proof %s not found", proofID)
	}
	return &p, nil
}

func (r *ProofRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.InstallationProof, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.InstallationProof
	for _, p := range r.s.proofs {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// Approve checks and writes under one lock, which is what the conditional
// UPDATE gives the Postgres implementation.
func (r *ProofRepository) Approve(ctx context.Context, a domain.Approval) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.proofs[a.ProofID]
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "proof %s not found", a.ProofID)
	}
	if p.Status != domain.ProofPending {
		return domain.NewError(domain.ErrProofNotPending, "proof was already resolved", map[string]any{
			"proof_id": p.ID.String(),
			"status":   string(p.Status),
		})
	}
	if !a.DueBefore.IsZero() && p.SubmittedAt.After(a.DueBefore) {
		return domain.NewError(domain.ErrAutoApprovalNotDue, "proof is still inside the review period", map[string]any{
			"auto_approval_due": p.AutoApprovalDue().Format(time.RFC3339),
		})
	}

	if a.Payout != nil {
		for _, existing := range r.s.payouts {
			if existing.ProofID == a.ProofID || existing.BookingID == a.Payout.BookingID {
				return domain.Errorf(domain.ErrPayoutAlreadyRecorded, "payout already recorded for booking %s", a.Payout.BookingID)
			}
		}
		r.s.payouts[a.Payout.ID] = *a.Payout
	}

	approver := a.Approver
	at := a.ApprovedAt
	p.Status = domain.ProofApproved
	p.ApprovedBy = &approver
	p.ApprovedAt = &at
	p.Version++
	r.s.proofs[p.ID] = p
	return nil
}

func (r *ProofRepository) Dispute(ctx context.Context, report *domain.IssueReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.proofs[report.ProofID]
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "proof %s not found", report.ProofID)
	}
	if p.Status != domain.ProofPending {
		return domain.NewError(domain.ErrProofNotPending, "proof was already resolved", map[string]any{
			"proof_id": p.ID.String(),
			"status":   string(p.Status),
		})
	}

	at := report.CreatedAt
	p.Status = domain.ProofDisputed
	p.DisputedAt = &at
	p.Version++
	r.s.proofs[p.ID] = p
	r.s.issues[report.ID] = *report
	return nil
}

func (r *ProofRepository) ListDueForAutoApproval(ctx context.Context, submittedBefore time.Time, limit int) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var due []domain.InstallationProof
	for _, p := range r.s.proofs {
		if p.Status == domain.ProofPending && !p.SubmittedAt.After(submittedBefore) && !r.s.bookingCancelled(p.BookingID) {
			due = append(due, p)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].SubmittedAt.Before(due[j].SubmittedAt) })

	ids := make([]uuid.UUID, 0, len(due))
	for i, p := range due {
		if limit > 0 && i >= limit {
			break
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// bookingCancelled expects s.mu to be held.
func (s *Store) bookingCancelled(id uuid.UUID) bool {
	b, ok := s.bookings[id]
	return ok && b.IsCancelled()
}

type PayoutRepository struct{ s *Store }

func (r *PayoutRepository) GetByProof(ctx context.Context, proofID uuid.UUID) (*domain.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.payouts {
		if p.ProofID == proofID {
			return &p, nil
		}
	}
	return nil, domain.Errorf(domain.ErrNotFound, "payout for proof %s not found", proofID)
}

// PayoutCount is used by tests to check that no proof was paid twice.
func (s *Store) PayoutCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payouts)
}
