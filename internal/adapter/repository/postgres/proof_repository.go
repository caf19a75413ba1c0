package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/installation_proof/internal/core/domain"
)

const (
	onePendingPerBooking = "installation_proofs_one_pending_per_booking"
	payoutsProofKey      = "payouts_proof_id_key"
	payoutsBookingKey    = "payouts_booking_id_key"
)

type ProofRepository struct {
	db *sql.DB
}

func NewProofRepository(db *sql.DB) *ProofRepository {
	return &ProofRepository{db: db}
}

const proofColumns = `id, booking_id, submitted_by, photo_urls, note, submitted_at, status, approval_source, approver_id, approved_at, disputed_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProof(row rowScanner) (*domain.InstallationProof, error) {
	var p domain.InstallationProof
	var urls pq.StringArray
	var source sql.NullString
	var approverID uuid.NullUUID
	var approvedAt, disputedAt sql.NullTime

	if err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.SubmittedBy,
		&urls,
		&p.Note,
		&p.SubmittedAt,
		&p.Status,
		&source,
		&approverID,
		&approvedAt,
		&disputedAt,
		&p.Version,
	); err != nil {
		return nil, err
	}

	p.PhotoURLs = []string(urls)
	if source.Valid {
		p.ApprovedBy = &domain.Approver{
			Source:       domain.ApprovalSource(source.String),
			AdvertiserID: approverID.UUID,
		}
	}
	if approvedAt.Valid {
		p.ApprovedAt = &approvedAt.Time
	}
	if disputedAt.Valid {
		p.DisputedAt = &disputedAt.Time
	}

	return &p, nil
}

func (r *ProofRepository) CreateProof(ctx context.Context, p *domain.InstallationProof) error {
	query := `
	INSERT INTO installation_proofs (id, booking_id, submitted_by, photo_urls, note, submitted_at, status, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.BookingID, p.SubmittedBy, pq.Array(p.PhotoURLs), p.Note, p.SubmittedAt, p.Status, p.Version,
	)
	if err != nil {
		if isUniqueViolation(err, onePendingPerBooking) {
			return domain.NewError(domain.ErrDuplicateActiveProof, "a proof is already awaiting review", map[string]any{
				"booking_id": p.BookingID.String(),
			})
		}
		return storeErr("insert proof", err)
	}

	return nil
}

func (r *ProofRepository) GetByID(ctx context.Context, proofID uuid.UUID) (*domain.InstallationProof, error) {
	query := `SELECT ` + proofColumns + ` FROM installation_proofs WHERE id = $1`

	p, err := scanProof(r.db.QueryRowContext(ctx, query, proofID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ErrNotFound, "proof %s not found", proofID)
		}
		return nil, storeErr("get proof", err)
	}

	return p, nil
}

func (r *ProofRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.InstallationProof, error) {
	query := `SELECT ` + proofColumns + ` FROM installation_proofs WHERE booking_id = $1 ORDER BY submitted_at ASC`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, storeErr("list proofs", err)
	}

	defer rows.Close()

	var proofs []domain.InstallationProof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, storeErr("scan proof", err)
		}

		proofs = append(proofs, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list proofs", err)
	}

	return proofs, nil
}

// Approve flips PENDING to APPROVED and records the payout in one
// transaction. The status predicate in the UPDATE is the single point that
// decides which of two racing approvals wins.
func (r *ProofRepository) Approve(ctx context.Context, a domain.Approval) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin approve", err)
	}

	defer tx.Rollback()

	var approverID uuid.NullUUID
	if !a.Approver.IsAuto() {
		approverID = uuid.NullUUID{UUID: a.Approver.AdvertiserID, Valid: true}
	}

	var dueBefore sql.NullTime
	if !a.DueBefore.IsZero() {
		dueBefore = sql.NullTime{Time: a.DueBefore, Valid: true}
	}

	query := `
	UPDATE installation_proofs
	SET status = 'APPROVED',
		approval_source = $1,
		approver_id = $2,
		approved_at = $3,
		version = version + 1
	WHERE id = $4 AND status = 'PENDING' AND ($5::timestamptz IS NULL OR submitted_at <= $5)
	`

	result, err := tx.ExecContext(ctx, query, string(a.Approver.Source), approverID, a.ApprovedAt, a.ProofID, dueBefore)
	if err != nil {
		return storeErr("approve proof", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("approve proof", err)
	}

	if rowsAffected == 0 {
		return r.explainMiss(ctx, tx, a.ProofID)
	}

	if a.Payout != nil {
		if err := insertPayout(ctx, tx, a.Payout); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit approve", err)
	}

	return nil
}

func insertPayout(ctx context.Context, tx *sql.Tx, p *domain.Payout) error {
	query := `
	INSERT INTO payouts (id, booking_id, proof_id, total_rental, rental_percent, first_rental_payout, installation_fee, total_payout, remaining_rental, computed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.ExecContext(ctx, query,
		p.ID, p.BookingID, p.ProofID,
		p.TotalRental, p.RentalPercent, p.FirstRentalPayout, p.InstallationFee, p.TotalPayout, p.RemainingRental,
		p.ComputedAt,
	)
	if err != nil {
		if isUniqueViolation(err, payoutsProofKey) || isUniqueViolation(err, payoutsBookingKey) {
			return domain.Errorf(domain.ErrPayoutAlreadyRecorded, "payout already recorded for booking %s", p.BookingID).Wrap(err)
		}
		return storeErr("insert payout", err)
	}
	return nil
}

// explainMiss re-reads the row inside the transaction to tell a missing
// proof from one that already left PENDING or is not yet due.
func (r *ProofRepository) explainMiss(ctx context.Context, tx *sql.Tx, proofID uuid.UUID) error {
	var status domain.Disposition
	var submittedAt time.Time

	err := tx.QueryRowContext(ctx, `SELECT status, submitted_at FROM installation_proofs WHERE id = $1`, proofID).Scan(&status, &submittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Errorf(domain.ErrNotFound, "proof %s not found", proofID)
		}
		return storeErr("reload proof", err)
	}

	if status != domain.ProofPending {
		return domain.NewError(domain.ErrProofNotPending, "proof was already resolved", map[string]any{
			"proof_id": proofID.String(),
			"status":   string(status),
		})
	}

	return domain.NewError(domain.ErrAutoApprovalNotDue, "proof is still inside the review period", map[string]any{
		"auto_approval_due": submittedAt.Add(domain.AutoApprovalDelay).Format(time.RFC3339),
	})
}

func (r *ProofRepository) Dispute(ctx context.Context, report *domain.IssueReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin dispute", err)
	}

	defer tx.Rollback()

	query := `
	UPDATE installation_proofs
	SET status = 'DISPUTED',
		disputed_at = $1,
		version = version + 1
	WHERE id = $2 AND status = 'PENDING'
	`

	result, err := tx.ExecContext(ctx, query, report.CreatedAt, report.ProofID)
	if err != nil {
		return storeErr("dispute proof", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr("dispute proof", err)
	}

	if rowsAffected == 0 {
		return r.explainMiss(ctx, tx, report.ProofID)
	}

	insert := `
	INSERT INTO issue_reports (id, booking_id, proof_id, reported_by, issue_type, description, photo_urls, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(ctx, insert,
		report.ID, report.BookingID, report.ProofID, report.ReportedBy,
		string(report.Type), report.Description, pq.Array(report.PhotoURLs), report.CreatedAt,
	)
	if err != nil {
		return storeErr("insert issue report", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit dispute", err)
	}

	return nil
}

func (r *ProofRepository) ListDueForAutoApproval(ctx context.Context, submittedBefore time.Time, limit int) ([]uuid.UUID, error) {
	query := `
	SELECT p.id FROM installation_proofs p
	JOIN bookings b ON b.id = p.booking_id
	WHERE p.status = 'PENDING' AND p.submitted_at <= $1 AND b.status <> 'CANCELLED'
	ORDER BY p.submitted_at ASC
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, submittedBefore, limit)
	if err != nil {
		return nil, storeErr("list due proofs", err)
	}

	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan due proof", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}
