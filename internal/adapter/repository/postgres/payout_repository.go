package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

type PayoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) GetByProof(ctx context.Context, proofID uuid.UUID) (*domain.Payout, error) {
	query := `
	SELECT id, booking_id, proof_id, total_rental, rental_percent, first_rental_payout, installation_fee, total_payout, remaining_rental, computed_at
	FROM payouts
	WHERE proof_id = $1
	`

	var p domain.Payout
	err := r.db.QueryRowContext(ctx, query, proofID).Scan(
		&p.ID,
		&p.BookingID,
		&p.ProofID,
		&p.TotalRental,
		&p.RentalPercent,
		&p.FirstRentalPayout,
		&p.InstallationFee,
		&p.TotalPayout,
		&p.RemainingRental,
		&p.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ErrNotFound, "payout for proof %s not found", proofID)
		}
		return nil, storeErr("get payout", err)
	}

	return &p, nil
}
