package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/services"
)

type ReviewHandler struct {
	svc *services.ReviewService
	log *slog.Logger
}

func NewReviewHandler(svc *services.ReviewService, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: log}
}

// POST /v1/proofs/:id/approve (ADVERTISER)
func (h *ReviewHandler) Approve(c *gin.Context) {
	proofID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.Approve(c.Request.Context(), proofID, userID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toProofResponse(res.Proof, res.Payout))
}

// POST /v1/proofs/:id/dispute (ADVERTISER), multipart: issue_type, description, photos
func (h *ReviewHandler) Dispute(c *gin.Context) {
	proofID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	photos, err := readPhotos(c, domain.MaxIssuePhotos)
	if err != nil {
		writeUploadError(c, h.log, err)
		return
	}

	report, err := h.svc.Dispute(c.Request.Context(), services.DisputeRequest{
		ProofID:      proofID,
		AdvertiserID: userID(c),
		IssueType:    domain.IssueType(c.PostForm("issue_type")),
		Description:  c.PostForm("description"),
		Photos:       photos,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toIssueResponse(report))
}
