package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Upper bounds on booking terms. Within them every payout amount fits in
// int64 with room to spare.
const (
	MaxAmount   int64 = 10_000_000_000
	MaxDayCount       = 3660
)

type PayoutTerms struct {
	PricePerDay     int64
	DayCount        int
	InstallationFee int64
}

// PayoutBreakdown is what the space owner is owed at approval time.
// RemainingRental is released later by a separate scheduler.
type PayoutBreakdown struct {
	TotalRental       int64
	RentalPercent     int64
	FirstRentalPayout int64
	InstallationFee   int64
	TotalPayout       int64
	RemainingRental   int64
}

// RentalPercent maps the booking length to the share of rental paid at
// first approval.
func RentalPercent(dayCount int) int64 {
	switch {
	case dayCount <= 7:
		return 70
	case dayCount <= 30:
		return 50
	default:
		return 40
	}
}

// CalculatePayout is a pure function of the booking terms. Amounts are
// minor units; the percentage share is rounded half up to the unit.
func CalculatePayout(t PayoutTerms) (PayoutBreakdown, error) {
	if t.DayCount < 1 {
		return PayoutBreakdown{}, NewError(ErrInvalidDayCount, "day count must be at least 1", map[string]any{
			"day_count": t.DayCount,
		})
	}
	if t.PricePerDay < 0 || t.InstallationFee < 0 {
		return PayoutBreakdown{}, Errorf(ErrInvalidBooking, "price per day and installation fee must not be negative")
	}

	pct := RentalPercent(t.DayCount)
	totalRental, ok := mulInt64(t.PricePerDay, int64(t.DayCount))
	if !ok || totalRental > (math.MaxInt64-50)/100 || t.InstallationFee > math.MaxInt64-totalRental {
		return PayoutBreakdown{}, NewError(ErrPayoutOutOfRange, "booking terms exceed the payout range", map[string]any{
			"price_per_day":    t.PricePerDay,
			"day_count":        t.DayCount,
			"installation_fee": t.InstallationFee,
		})
	}
	first := (totalRental*pct + 50) / 100

	return PayoutBreakdown{
		TotalRental:       totalRental,
		RentalPercent:     pct,
		FirstRentalPayout: first,
		InstallationFee:   t.InstallationFee,
		TotalPayout:       t.InstallationFee + first,
		RemainingRental:   totalRental - first,
	}, nil
}

// mulInt64 multiplies non-negative a and b, reporting false on overflow.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// Payout is the immutable record written together with an approval.
type Payout struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	ProofID   uuid.UUID
	PayoutBreakdown
	ComputedAt time.Time
}

func NewPayout(bookingID, proofID uuid.UUID, b PayoutBreakdown, at time.Time) *Payout {
	return &Payout{
		ID:              uuid.New(),
		BookingID:       bookingID,
		ProofID:         proofID,
		PayoutBreakdown: b,
		ComputedAt:      at.UTC(),
	}
}
