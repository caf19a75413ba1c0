package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/srgjo27/installation_proof/internal/adapter/repository/memory"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) PublishJSON(context.Context, string, any) error { return nil }

func seedStore(t *testing.T) (*memory.Store, *domain.Booking, *domain.InstallationProof) {
	t.Helper()

	store := memory.NewStore()
	booking := newBooking()
	proof := pendingProof(booking, submittedAt)

	require.NoError(t, store.Bookings().CreateBooking(context.Background(), booking))
	require.NoError(t, store.Proofs().CreateProof(context.Background(), proof))
	return store, booking, proof
}

func newStoreReview(store *memory.Store, now time.Time) *services.ReviewService {
	svc := services.NewReviewService(store.Bookings(), store.Proofs(), nil, nopPublisher{}, noDelayUploads, discard)
	svc.SetClock(fixedClock(now))
	return svc
}

func TestApproveRace_ExactlyOneWinner(t *testing.T) {
	now := submittedAt.Add(48*time.Hour + time.Minute)

	for i := 0; i < 50; i++ {
		store, booking, proof := seedStore(t)
		svc := newStoreReview(store, now)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})

		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, errs[0] = svc.Approve(context.Background(), proof.ID, booking.AdvertiserID)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, errs[1] = svc.AutoApprove(context.Background(), proof.ID)
		}()
		close(start)
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.True(t, domain.IsConflict(err), "loser must see a conflict, got %v", err)
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, store.PayoutCount())

		got, err := store.Proofs().GetByID(context.Background(), proof.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ProofApproved, got.Status)
	}
}

func TestApproveThenDispute_Conflicts(t *testing.T) {
	store, booking, proof := seedStore(t)
	svc := newStoreReview(store, submittedAt.Add(time.Hour))

	_, err := svc.Approve(context.Background(), proof.ID, booking.AdvertiserID)
	require.NoError(t, err)

	_, err = svc.Dispute(context.Background(), services.DisputeRequest{
		ProofID:      proof.ID,
		AdvertiserID: booking.AdvertiserID,
		IssueType:    domain.IssueWrongLocation,
		Description:  "this is not the address I booked",
		Photos:       photos(2),
	})

	assert.Equal(t, domain.ErrProofNotPending, domain.Code(err))
	assert.Equal(t, 1, store.PayoutCount())
}

func TestAutoApproveAfterApprove_NoSecondPayout(t *testing.T) {
	store, booking, proof := seedStore(t)

	_, err := newStoreReview(store, submittedAt.Add(time.Hour)).Approve(context.Background(), proof.ID, booking.AdvertiserID)
	require.NoError(t, err)

	_, err = newStoreReview(store, submittedAt.Add(72*time.Hour)).AutoApprove(context.Background(), proof.ID)

	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, 1, store.PayoutCount())
}
