package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	query := `
	INSERT INTO bookings (id, advertiser_id, space_id, space_owner_id, start_date, end_date, day_count, price_per_day, installation_fee, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.AdvertiserID, b.SpaceID, b.SpaceOwnerID,
		b.StartDate, b.EndDate, b.DayCount, b.PricePerDay, b.InstallationFee,
		b.Status, b.CreatedAt,
	)
	if err != nil {
		return storeErr("insert booking", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `
	SELECT id, advertiser_id, space_id, space_owner_id, start_date, end_date, day_count, price_per_day, installation_fee, status, created_at, cancelled_at
	FROM bookings
	WHERE id = $1
	`

	var b domain.Booking
	var cancelledAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&b.ID,
		&b.AdvertiserID,
		&b.SpaceID,
		&b.SpaceOwnerID,
		&b.StartDate,
		&b.EndDate,
		&b.DayCount,
		&b.PricePerDay,
		&b.InstallationFee,
		&b.Status,
		&b.CreatedAt,
		&cancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ErrNotFound, "booking %s not found", bookingID)
		}
		return nil, storeErr("get booking", err)
	}

	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}

	return &b, nil
}

// CancelBooking is a soft state change; bookings are never deleted.
func (r *BookingRepository) CancelBooking(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	query := `
	UPDATE bookings
	SET status = 'CANCELLED', cancelled_at = $1
	WHERE id = $2 AND status = 'ACTIVE'
	`

	result, err := r.db.ExecContext(ctx, query, at, bookingID)
	if err != nil {
		return storeErr("cancel booking", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("cancel booking", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, bookingID); err != nil {
			return err
		}
	}

	return nil
}
