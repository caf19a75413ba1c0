package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingActive    BookingStatus = "ACTIVE"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking is a confirmed rental of an ad space. Terms are fixed at
// creation; only Status changes afterwards. Amounts are minor units.
type Booking struct {
	ID              uuid.UUID
	AdvertiserID    uuid.UUID
	SpaceID         uuid.UUID
	SpaceOwnerID    uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	DayCount        int
	PricePerDay     int64
	InstallationFee int64
	Status          BookingStatus
	CreatedAt       time.Time
	CancelledAt     *time.Time
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingCancelled
}

func (b *Booking) IsSpaceOwner(userID uuid.UUID) bool {
	return b.SpaceOwnerID == userID
}

func (b *Booking) IsAdvertiser(userID uuid.UUID) bool {
	return b.AdvertiserID == userID
}

// Terms returns the inputs the payout calculator needs.
func (b *Booking) Terms() PayoutTerms {
	return PayoutTerms{
		PricePerDay:     b.PricePerDay,
		DayCount:        b.DayCount,
		InstallationFee: b.InstallationFee,
	}
}

// DayCount returns ceil((end - start) / 24h).
func DayCount(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

type NewBooking struct {
	AdvertiserID    uuid.UUID
	SpaceID         uuid.UUID
	SpaceOwnerID    uuid.UUID
	StartDate       time.Time
	EndDate         time.Time
	PricePerDay     int64
	InstallationFee int64
}

func NewBookingFrom(in NewBooking, now time.Time) (*Booking, error) {
	if !in.EndDate.After(in.StartDate) {
		return nil, NewError(ErrInvalidBooking, "end date must be after start date", map[string]any{
			"start_date": in.StartDate.Format(time.RFC3339),
			"end_date":   in.EndDate.Format(time.RFC3339),
		})
	}
	if in.PricePerDay < 0 || in.InstallationFee < 0 {
		return nil, Errorf(ErrInvalidBooking, "price per day and installation fee must not be negative")
	}
	if in.PricePerDay > MaxAmount || in.InstallationFee > MaxAmount {
		return nil, NewError(ErrInvalidBooking, "price per day and installation fee exceed the maximum amount", map[string]any{
			"max_amount": MaxAmount,
		})
	}
	if days := DayCount(in.StartDate, in.EndDate); days > MaxDayCount {
		return nil, NewError(ErrInvalidBooking, "booking is longer than the maximum day count", map[string]any{
			"day_count":     days,
			"max_day_count": MaxDayCount,
		})
	}
	if in.AdvertiserID == uuid.Nil || in.SpaceOwnerID == uuid.Nil || in.SpaceID == uuid.Nil {
		return nil, Errorf(ErrInvalidBooking, "advertiser, space and space owner are required")
	}

	return &Booking{
		ID:              uuid.New(),
		AdvertiserID:    in.AdvertiserID,
		SpaceID:         in.SpaceID,
		SpaceOwnerID:    in.SpaceOwnerID,
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		DayCount:        DayCount(in.StartDate, in.EndDate),
		PricePerDay:     in.PricePerDay,
		InstallationFee: in.InstallationFee,
		Status:          BookingActive,
		CreatedAt:       now.UTC(),
	}, nil
}
