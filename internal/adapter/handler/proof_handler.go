package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"github.com/srgjo27/installation_proof/internal/core/services"
)

const (
	maxPhotoBytes  = 10 << 20
	maxFormMemory  = 32 << 20
	maxFormFields  = 1 << 20
	maxNoteLength  = 1000
	photoFormField = "photos"
)

type ProofHandler struct {
	svc *services.ProofService
	log *slog.Logger
}

func NewProofHandler(svc *services.ProofService, log *slog.Logger) *ProofHandler {
	return &ProofHandler{svc: svc, log: log}
}

// POST /v1/bookings/:id/proofs (SPACE_OWNER), multipart: photos, note
func (h *ProofHandler) Submit(c *gin.Context) {
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	photos, err := readPhotos(c, domain.MaxProofPhotos)
	if err != nil {
		writeUploadError(c, h.log, err)
		return
	}

	note := c.PostForm("note")
	if len([]rune(note)) > maxNoteLength {
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("note must be at most %d characters", maxNoteLength))
		return
	}

	proof, err := h.svc.SubmitProof(c.Request.Context(), services.SubmitProofRequest{
		BookingID: bookingID,
		OwnerID:   userID(c),
		Photos:    photos,
		Note:      note,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, toProofResponse(proof, nil))
}

// GET /v1/proofs/:id
func (h *ProofHandler) Get(c *gin.Context) {
	proofID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	view, err := h.svc.GetProof(c.Request.Context(), proofID, userID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, toProofResponse(view.Proof, view.Payout))
}

// GET /v1/bookings/:id/proofs
func (h *ProofHandler) List(c *gin.Context) {
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	proofs, err := h.svc.ListProofs(c.Request.Context(), bookingID, userID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := make([]proofResponse, 0, len(proofs))
	for i := range proofs {
		out = append(out, toProofResponse(&proofs[i], nil))
	}
	c.JSON(http.StatusOK, gin.H{"proofs": out})
}

// readPhotos accepts both "photos" and "photos[]" field names. An absent
// field yields an empty slice so the lower bound is checked in one place.
// The body is capped at maxCount full-size photos plus form fields, and no
// file is read when there are more than maxCount of them.
func readPhotos(c *gin.Context, maxCount int) ([]ports.Photo, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(maxCount)*maxPhotoBytes+maxFormFields)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, tooLarge
		case errors.Is(err, http.ErrNotMultipart):
			return nil, fmt.Errorf("expected multipart/form-data")
		}
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	var files []*multipart.FileHeader
	files = append(files, form.File[photoFormField]...)
	files = append(files, form.File[photoFormField+"[]"]...)
	if len(files) > maxCount {
		return nil, domain.TooManyPhotos(len(files), maxCount)
	}

	photos := make([]ports.Photo, 0, len(files))
	for _, fh := range files {
		p, err := readPhoto(fh)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, nil
}

func writeUploadError(c *gin.Context, log *slog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case domain.Code(err) != "":
		writeError(c, log, err)
	case errors.As(err, &tooLarge):
		abortJSON(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	default:
		abortJSON(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}
}

func readPhoto(fh *multipart.FileHeader) (ports.Photo, error) {
	if fh.Size > maxPhotoBytes {
		return ports.Photo{}, fmt.Errorf("photo %s exceeds %d bytes", fh.Filename, maxPhotoBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return ports.Photo{}, fmt.Errorf("open photo %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return ports.Photo{}, fmt.Errorf("read photo %s: %w", fh.Filename, err)
	}
	if len(data) > maxPhotoBytes {
		return ports.Photo{}, fmt.Errorf("photo %s exceeds %d bytes", fh.Filename, maxPhotoBytes)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return ports.Photo{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}
