package handler

import (
	"time"

	"github.com/srgjo27/installation_proof/internal/core/domain"
)

const dateLayout = "2006-01-02"

type bookingResponse struct {
	ID              string     `json:"id"`
	AdvertiserID    string     `json:"advertiser_id"`
	SpaceID         string     `json:"space_id"`
	SpaceOwnerID    string     `json:"space_owner_id"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	DayCount        int        `json:"day_count"`
	PricePerDay     int64      `json:"price_per_day"`
	InstallationFee int64      `json:"installation_fee"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID.String(),
		AdvertiserID:    b.AdvertiserID.String(),
		SpaceID:         b.SpaceID.String(),
		SpaceOwnerID:    b.SpaceOwnerID.String(),
		StartDate:       b.StartDate.Format(dateLayout),
		EndDate:         b.EndDate.Format(dateLayout),
		DayCount:        b.DayCount,
		PricePerDay:     b.PricePerDay,
		InstallationFee: b.InstallationFee,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		CancelledAt:     b.CancelledAt,
	}
}

type approverResponse struct {
	Source       string `json:"source"`
	AdvertiserID string `json:"advertiser_id,omitempty"`
}

type proofResponse struct {
	ID              string            `json:"id"`
	BookingID       string            `json:"booking_id"`
	SubmittedBy     string            `json:"submitted_by"`
	PhotoURLs       []string          `json:"photo_urls"`
	Note            string            `json:"note,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	AutoApprovalDue time.Time         `json:"auto_approval_due"`
	Status          string            `json:"status"`
	ApprovedBy      *approverResponse `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	DisputedAt      *time.Time        `json:"disputed_at,omitempty"`
	Payout          *payoutResponse   `json:"payout,omitempty"`
}

func toProofResponse(p *domain.InstallationProof, payout *domain.Payout) proofResponse {
	resp := proofResponse{
		ID:              p.ID.String(),
		BookingID:       p.BookingID.String(),
		SubmittedBy:     p.SubmittedBy.String(),
		PhotoURLs:       p.PhotoURLs,
		Note:            p.Note,
		SubmittedAt:     p.SubmittedAt,
		AutoApprovalDue: p.AutoApprovalDue(),
		Status:          string(p.Status),
		ApprovedAt:      p.ApprovedAt,
		DisputedAt:      p.DisputedAt,
	}
	if p.ApprovedBy != nil {
		resp.ApprovedBy = &approverResponse{Source: string(p.ApprovedBy.Source)}
		if !p.ApprovedBy.IsAuto() {
			resp.ApprovedBy.AdvertiserID = p.ApprovedBy.AdvertiserID.String()
		}
	}
	if payout != nil {
		pr := toPayoutResponse(payout.PayoutBreakdown)
		resp.Payout = &pr
	}
	return resp
}

type payoutResponse struct {
	TotalRental       int64 `json:"total_rental"`
	RentalPercent     int64 `json:"rental_percent"`
	FirstRentalPayout int64 `json:"first_rental_payout"`
	InstallationFee   int64 `json:"installation_fee"`
	TotalPayout       int64 `json:"total_payout"`
	RemainingRental   int64 `json:"remaining_rental"`
}

func toPayoutResponse(b domain.PayoutBreakdown) payoutResponse {
	return payoutResponse{
		TotalRental:       b.TotalRental,
		RentalPercent:     b.RentalPercent,
		FirstRentalPayout: b.FirstRentalPayout,
		InstallationFee:   b.InstallationFee,
		TotalPayout:       b.TotalPayout,
		RemainingRental:   b.RemainingRental,
	}
}

type issueResponse struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	ProofID     string    `json:"proof_id"`
	IssueType   string    `json:"issue_type"`
	Description string    `json:"description"`
	PhotoURLs   []string  `json:"photo_urls"`
	CreatedAt   time.Time `json:"created_at"`
}

func toIssueResponse(r *domain.IssueReport) issueResponse {
	return issueResponse{
		ID:          r.ID.String(),
		BookingID:   r.BookingID.String(),
		ProofID:     r.ProofID.String(),
		IssueType:   string(r.Type),
		Description: r.Description,
		PhotoURLs:   r.PhotoURLs,
		CreatedAt:   r.CreatedAt,
	}
}
