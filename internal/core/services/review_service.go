package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/srgjo27/installation_proof/internal/core/services")

type DisputeRequest struct {
	ProofID      uuid.UUID
	AdvertiserID uuid.UUID
	IssueType    domain.IssueType
	Description  string
	Photos       []ports.Photo
}

type ApprovalResult struct {
	Proof  *domain.InstallationProof
	Payout *domain.Payout
}

// ReviewService resolves a PENDING proof exactly once. The repository's
// conditional update decides races; everything before it is a fast path
// that produces a precise message.
type ReviewService struct {
	bookingRepo ports.BookingRepository
	proofRepo   ports.ProofRepository
	uploads     *uploader
	pub         ports.EventPublisher
	log         *slog.Logger
	now         func() time.Time
}

func NewReviewService(
	bookingRepo ports.BookingRepository,
	proofRepo ports.ProofRepository,
	storage ports.PhotoStorage,
	pub ports.EventPublisher,
	uploadCfg UploadConfig,
	log *slog.Logger,
) *ReviewService {
	return &ReviewService{
		bookingRepo: bookingRepo,
		proofRepo:   proofRepo,
		uploads:     newUploader(storage, uploadCfg, log),
		pub:         pub,
		log:         log,
		now:         time.Now,
	}
}

// Approve is the advertiser accepting the installation.
func (s *ReviewService) Approve(ctx context.Context, proofID, advertiserID uuid.UUID) (*ApprovalResult, error) {
	ctx, span := tracer.Start(ctx, "proof.approve", trace.WithAttributes(attribute.String("proof_id", proofID.String())))
	defer span.End()

	proof, booking, err := s.load(ctx, proofID)
	if err != nil {
		return nil, err
	}

	if !booking.IsAdvertiser(advertiserID) {
		return nil, domain.Errorf(domain.ErrNotAuthorized, "only the advertiser can approve this proof")
	}

	if err := notPending(proof); err != nil {
		return nil, err
	}

	res, err := s.approve(ctx, proof, booking, domain.AdvertiserApproval(advertiserID), time.Time{})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// AutoApprove is the timer path. It only succeeds once 48h have passed
// since submission and nobody acted in between.
func (s *ReviewService) AutoApprove(ctx context.Context, proofID uuid.UUID) (*ApprovalResult, error) {
	ctx, span := tracer.Start(ctx, "proof.auto_approve", trace.WithAttributes(attribute.String("proof_id", proofID.String())))
	defer span.End()

	proof, booking, err := s.load(ctx, proofID)
	if err != nil {
		return nil, err
	}

	if err := notPending(proof); err != nil {
		return nil, err
	}

	now := s.now()
	if now.Before(proof.AutoApprovalDue()) {
		return nil, domain.NewError(domain.ErrAutoApprovalNotDue, "proof is still inside the review period", map[string]any{
			"auto_approval_due": proof.AutoApprovalDue().Format(time.RFC3339),
		})
	}

	res, err := s.approve(ctx, proof, booking, domain.AutoApproval(), now.Add(-domain.AutoApprovalDelay))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (s *ReviewService) approve(
	ctx context.Context,
	proof *domain.InstallationProof,
	booking *domain.Booking,
	approver domain.Approver,
	dueBefore time.Time,
) (*ApprovalResult, error) {
	if booking.IsCancelled() {
		details := map[string]any{"booking_id": booking.ID.String()}
		if booking.CancelledAt != nil {
			details["cancelled_at"] = booking.CancelledAt.Format(time.RFC3339)
		}
		return nil, domain.NewError(domain.ErrBookingCancelled, "booking is cancelled, no payout can be released", details)
	}

	breakdown, err := domain.CalculatePayout(booking.Terms())
	if err != nil {
		s.log.Error("payout calculation rejected booking terms",
			"invariant", domain.Code(err),
			"booking_id", booking.ID,
			"proof_id", proof.ID,
			"day_count", booking.DayCount,
		)
		return nil, err
	}

	now := s.now().UTC()
	payout := domain.NewPayout(booking.ID, proof.ID, breakdown, now)

	err = s.proofRepo.Approve(ctx, domain.Approval{
		ProofID:    proof.ID,
		Approver:   approver,
		ApprovedAt: now,
		DueBefore:  dueBefore,
		Payout:     payout,
	})
	switch {
	case err == nil:
	case domain.IsConflict(err):
		s.log.Info("approval lost race", "proof_id", proof.ID, "auto", approver.IsAuto())
		return nil, err
	case domain.Code(err) == domain.ErrPayoutAlreadyRecorded:
		s.log.Error("payout already recorded for booking",
			"invariant", domain.ErrPayoutAlreadyRecorded,
			"booking_id", booking.ID,
			"proof_id", proof.ID,
		)
		return nil, err
	default:
		return nil, err
	}

	approved := *proof
	approved.Status = domain.ProofApproved
	approved.ApprovedBy = &approver
	approved.ApprovedAt = &now
	approved.Version++

	s.log.Info("proof approved",
		"booking_id", booking.ID,
		"proof_id", proof.ID,
		"status", approved.Status,
		"auto", approver.IsAuto(),
		"total_payout", payout.TotalPayout,
	)
	instruments.approved.Add(ctx, 1, metric.WithAttributes(attribute.Bool("auto", approver.IsAuto())))
	instruments.payoutCents.Add(ctx, payout.TotalPayout)

	evt := domain.ProofApprovedEvent{
		BookingID:   booking.ID.String(),
		ProofID:     proof.ID.String(),
		Auto:        approver.IsAuto(),
		SubmittedAt: proof.SubmittedAt,
		ApprovedAt:  now,
		TotalPayout: payout.TotalPayout,
	}
	if !approver.IsAuto() {
		evt.ApprovedBy = approver.AdvertiserID.String()
	}
	if err := s.pub.PublishJSON(ctx, domain.EventProofApproved, evt); err != nil {
		s.log.Error("publish proof approved", "proof_id", proof.ID, "err", err)
	}

	return &ApprovalResult{Proof: &approved, Payout: payout}, nil
}

// Dispute files an issue report and moves the proof to DISPUTED. No payout
// is computed on this path.
func (s *ReviewService) Dispute(ctx context.Context, req DisputeRequest) (*domain.IssueReport, error) {
	ctx, span := tracer.Start(ctx, "proof.dispute", trace.WithAttributes(attribute.String("proof_id", req.ProofID.String())))
	defer span.End()

	proof, booking, err := s.load(ctx, req.ProofID)
	if err != nil {
		return nil, err
	}

	if !booking.IsAdvertiser(req.AdvertiserID) {
		return nil, domain.Errorf(domain.ErrNotAuthorized, "only the advertiser can report an issue")
	}

	if err := notPending(proof); err != nil {
		return nil, err
	}

	if err := domain.ValidateIssue(req.IssueType, req.Description, len(req.Photos)); err != nil {
		return nil, err
	}

	if !proof.ReviewOpen(s.now()) {
		return nil, domain.NewError(domain.ErrReviewWindowExpired, "the 48 hour review period has ended", map[string]any{
			"auto_approval_due": proof.AutoApprovalDue().Format(time.RFC3339),
		})
	}

	urls, err := s.uploads.uploadAll(ctx, req.Photos)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	report := &domain.IssueReport{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		ProofID:     proof.ID,
		ReportedBy:  req.AdvertiserID,
		Type:        req.IssueType,
		Description: req.Description,
		PhotoURLs:   urls,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.proofRepo.Dispute(ctx, report); err != nil {
		if domain.IsConflict(err) {
			s.log.Info("dispute lost race", "proof_id", proof.ID)
		}
		return nil, err
	}

	s.log.Info("proof disputed",
		"booking_id", booking.ID,
		"proof_id", proof.ID,
		"status", domain.ProofDisputed,
		"issue_type", report.Type,
	)
	instruments.disputed.Add(ctx, 1, metric.WithAttributes(attribute.String("issue_type", string(report.Type))))

	if err := s.pub.PublishJSON(ctx, domain.EventProofDisputed, domain.ProofDisputedEvent{
		BookingID:   booking.ID.String(),
		ProofID:     proof.ID.String(),
		IssueID:     report.ID.String(),
		IssueType:   string(report.Type),
		SubmittedAt: proof.SubmittedAt,
		DisputedAt:  report.CreatedAt,
	}); err != nil {
		s.log.Error("publish proof disputed", "proof_id", proof.ID, "err", err)
	}

	return report, nil
}

func (s *ReviewService) load(ctx context.Context, proofID uuid.UUID) (*domain.InstallationProof, *domain.Booking, error) {
	proof, err := s.proofRepo.GetByID(ctx, proofID)
	if err != nil {
		return nil, nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, proof.BookingID)
	if err != nil {
		return nil, nil, err
	}
	return proof, booking, nil
}

func notPending(p *domain.InstallationProof) error {
	if p.IsPending() {
		return nil
	}
	return domain.NewError(domain.ErrProofNotPending, "proof was already resolved", map[string]any{
		"proof_id": p.ID.String(),
		"status":   string(p.Status),
	})
}
