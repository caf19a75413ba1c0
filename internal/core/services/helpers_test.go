package services_test

import (
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"github.com/srgjo27/installation_proof/internal/core/services"
)

var (
	discard = slog.New(slog.DiscardHandler)

	// Booking starts 2025-03-15; the installation window is 03-08 .. 03-22.
	bookingStart = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	inWindow     = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	noDelayUploads = services.UploadConfig{
		Timeout:     time.Second,
		MaxAttempts: 3,
		BackOff:     func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newBooking() *domain.Booking {
	return &domain.Booking{
		ID:              uuid.New(),
		AdvertiserID:    uuid.New(),
		SpaceID:         uuid.New(),
		SpaceOwnerID:    uuid.New(),
		StartDate:       bookingStart,
		EndDate:         bookingStart.AddDate(0, 0, 7),
		DayCount:        7,
		PricePerDay:     10000,
		InstallationFee: 5000,
		Status:          domain.BookingActive,
		CreatedAt:       bookingStart.AddDate(0, 0, -20),
	}
}

func pendingProof(b *domain.Booking, submittedAt time.Time) *domain.InstallationProof {
	return &domain.InstallationProof{
		ID:          uuid.New(),
		BookingID:   b.ID,
		SubmittedBy: b.SpaceOwnerID,
		PhotoURLs:   []string{"https://cdn.example.com/proofs/a.jpg"},
		SubmittedAt: submittedAt,
		Status:      domain.ProofPending,
		Version:     1,
	}
}

func photos(n int) []ports.Photo {
	out := make([]ports.Photo, n)
	for i := range out {
		out[i] = ports.Photo{
			Name:        "photo" + string(rune('a'+i)) + ".jpg",
			ContentType: "image/jpeg",
			Data:        []byte{0xff, 0xd8, 0xff},
		}
	}
	return out
}
