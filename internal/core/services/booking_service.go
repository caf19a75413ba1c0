package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
)

type CreateBookingRequest struct {
	AdvertiserID    string    `json:"advertiser_id"`
	SpaceID         string    `json:"space_id" validate:"required,uuid"`
	SpaceOwnerID    string    `json:"space_owner_id" validate:"required,uuid"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	PricePerDay     int64     `json:"price_per_day" validate:"gte=0,lte=10000000000"`
	InstallationFee int64     `json:"installation_fee" validate:"gte=0,lte=10000000000"`
}

type WindowResponse struct {
	State         domain.WindowState `json:"state"`
	OpensAt       string             `json:"opens_at"`
	LastDay       string             `json:"last_day"`
	DaysRemaining int                `json:"days_remaining,omitempty"`
	Critical      bool               `json:"critical"`
}

type BookingService struct {
	bookingRepo ports.BookingRepository
	log         *slog.Logger
	now         func() time.Time
}

func NewBookingService(bookingRepo ports.BookingRepository, log *slog.Logger) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		log:         log,
		now:         time.Now,
	}
}

// CreateBooking records a booking once the advertiser's payment completed.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	advertiserID, err := uuid.Parse(req.AdvertiserID)
	if err != nil {
		return nil, domain.Errorf(domain.ErrInvalidBooking, "invalid advertiser id")
	}

	spaceID, err := uuid.Parse(req.SpaceID)
	if err != nil {
		return nil, domain.Errorf(domain.ErrInvalidBooking, "invalid space id")
	}

	ownerID, err := uuid.Parse(req.SpaceOwnerID)
	if err != nil {
		return nil, domain.Errorf(domain.ErrInvalidBooking, "invalid space owner id")
	}

	booking, err := domain.NewBookingFrom(domain.NewBooking{
		AdvertiserID:    advertiserID,
		SpaceID:         spaceID,
		SpaceOwnerID:    ownerID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PricePerDay:     req.PricePerDay,
		InstallationFee: req.InstallationFee,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.bookingRepo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		"booking_id", booking.ID,
		"day_count", booking.DayCount,
		"start_date", booking.StartDate.Format("2006-01-02"),
	)
	return booking, nil
}

// GetBooking returns the booking if userID is one of its two parties.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.IsAdvertiser(userID) && !booking.IsSpaceOwner(userID) {
		return nil, domain.Errorf(domain.ErrNotAuthorized, "not a party to this booking")
	}

	return booking, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, advertiserID uuid.UUID) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if !booking.IsAdvertiser(advertiserID) {
		return domain.Errorf(domain.ErrNotAuthorized, "only the advertiser can cancel a booking")
	}

	if booking.IsCancelled() {
		return nil
	}

	if err := s.bookingRepo.CancelBooking(ctx, bookingID, s.now()); err != nil {
		return err
	}

	s.log.Info("booking cancelled", "booking_id", bookingID)
	return nil
}

// InstallationWindow is evaluated against the clock on every call.
func (s *BookingService) InstallationWindow(ctx context.Context, bookingID, userID uuid.UUID) (*WindowResponse, error) {
	booking, err := s.GetBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	w := domain.CheckInstallationWindow(booking.StartDate, s.now())
	return &WindowResponse{
		State:         w.State,
		OpensAt:       w.OpensAt.Format(time.RFC3339),
		LastDay:       w.LastDay.Format("2006-01-02"),
		DaysRemaining: w.DaysRemaining,
		Critical:      w.Critical,
	}, nil
}

// PayoutEstimate is the figure shown before approval. It runs the same
// calculation the approval does, so the two always agree.
func (s *BookingService) PayoutEstimate(ctx context.Context, bookingID, userID uuid.UUID) (*domain.PayoutBreakdown, error) {
	booking, err := s.GetBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}

	b, err := domain.CalculatePayout(booking.Terms())
	if err != nil {
		return nil, err
	}
	return &b, nil
}
