package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SubmitProofRequest struct {
	BookingID uuid.UUID
	OwnerID   uuid.UUID
	Photos    []ports.Photo
	Note      string
}

type ProofView struct {
	Proof  *domain.InstallationProof
	Payout *domain.Payout
}

type ProofService struct {
	bookingRepo ports.BookingRepository
	proofRepo   ports.ProofRepository
	payoutRepo  ports.PayoutRepository
	uploads     *uploader
	pub         ports.EventPublisher
	log         *slog.Logger
	now         func() time.Time
}

func NewProofService(
	bookingRepo ports.BookingRepository,
	proofRepo ports.ProofRepository,
	payoutRepo ports.PayoutRepository,
	storage ports.PhotoStorage,
	pub ports.EventPublisher,
	uploadCfg UploadConfig,
	log *slog.Logger,
) *ProofService {
	return &ProofService{
		bookingRepo: bookingRepo,
		proofRepo:   proofRepo,
		payoutRepo:  payoutRepo,
		uploads:     newUploader(storage, uploadCfg, log),
		pub:         pub,
		log:         log,
		now:         time.Now,
	}
}

// SubmitProof stores the photos and opens a PENDING proof. The proof row
// is only written once every photo has a durable URL.
func (s *ProofService) SubmitProof(ctx context.Context, req SubmitProofRequest) (*domain.InstallationProof, error) {
	ctx, span := tracer.Start(ctx, "proof.submit", trace.WithAttributes(
		attribute.String("booking_id", req.BookingID.String()),
		attribute.Int("photos", len(req.Photos)),
	))
	defer span.End()

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !booking.IsSpaceOwner(req.OwnerID) {
		return nil, domain.Errorf(domain.ErrNotAuthorized, "only the space owner can submit installation proof")
	}

	if booking.IsCancelled() {
		return nil, domain.Errorf(domain.ErrBookingCancelled, "booking %s is cancelled", booking.ID)
	}

	if err := domain.ValidateProofPhotos(len(req.Photos)); err != nil {
		return nil, err
	}

	if w := domain.CheckInstallationWindow(booking.StartDate, s.now()); w.State != domain.WindowOpen {
		return nil, w.Err(s.now())
	}

	if err := s.checkNoActiveProof(ctx, booking.ID); err != nil {
		return nil, err
	}

	urls, err := s.uploads.uploadAll(ctx, req.Photos)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// Uploads can be slow; the window is checked again at the instant
	// that becomes the submission timestamp.
	submittedAt := s.now().UTC()
	if w := domain.CheckInstallationWindow(booking.StartDate, submittedAt); w.State != domain.WindowOpen {
		return nil, w.Err(submittedAt)
	}

	proof := &domain.InstallationProof{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		SubmittedBy: req.OwnerID,
		PhotoURLs:   urls,
		Note:        req.Note,
		SubmittedAt: submittedAt,
		Status:      domain.ProofPending,
		Version:     1,
	}

	if err := s.proofRepo.CreateProof(ctx, proof); err != nil {
		return nil, err
	}

	s.log.Info("proof submitted",
		"booking_id", booking.ID,
		"proof_id", proof.ID,
		"status", proof.Status,
		"photos", len(urls),
		"auto_approval_due", proof.AutoApprovalDue(),
	)
	instruments.submitted.Add(ctx, 1)

	if err := s.pub.PublishJSON(ctx, domain.EventProofSubmitted, domain.ProofSubmittedEvent{
		BookingID:       booking.ID.String(),
		ProofID:         proof.ID.String(),
		SubmittedBy:     req.OwnerID.String(),
		PhotoCount:      len(urls),
		SubmittedAt:     proof.SubmittedAt,
		AutoApprovalDue: proof.AutoApprovalDue(),
	}); err != nil {
		s.log.Error("publish proof submitted", "proof_id", proof.ID, "err", err)
	}

	return proof, nil
}

func (s *ProofService) checkNoActiveProof(ctx context.Context, bookingID uuid.UUID) error {
	existing, err := s.proofRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	for _, p := range existing {
		switch p.Status {
		case domain.ProofPending:
			return domain.NewError(domain.ErrDuplicateActiveProof, "a proof is already awaiting review", map[string]any{
				"proof_id":          p.ID.String(),
				"auto_approval_due": p.AutoApprovalDue().Format(time.RFC3339),
			})
		case domain.ProofApproved:
			return domain.NewError(domain.ErrProofAlreadyApproved, "installation was already approved", map[string]any{
				"proof_id": p.ID.String(),
			})
		}
	}
	return nil
}

// GetProof returns the proof and, once approved, its payout.
func (s *ProofService) GetProof(ctx context.Context, proofID, userID uuid.UUID) (*ProofView, error) {
	proof, err := s.proofRepo.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeParty(ctx, proof.BookingID, userID); err != nil {
		return nil, err
	}

	view := &ProofView{Proof: proof}
	if proof.Status == domain.ProofApproved {
		payout, err := s.payoutRepo.GetByProof(ctx, proof.ID)
		if err != nil {
			return nil, err
		}
		view.Payout = payout
	}
	return view, nil
}

func (s *ProofService) ListProofs(ctx context.Context, bookingID, userID uuid.UUID) ([]domain.InstallationProof, error) {
	if err := s.authorizeParty(ctx, bookingID, userID); err != nil {
		return nil, err
	}
	return s.proofRepo.ListByBooking(ctx, bookingID)
}

func (s *ProofService) authorizeParty(ctx context.Context, bookingID, userID uuid.UUID) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.IsAdvertiser(userID) && !booking.IsSpaceOwner(userID) {
		return domain.Errorf(domain.ErrNotAuthorized, "not a party to this booking")
	}
	return nil
}
