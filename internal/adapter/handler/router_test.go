package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/adapter/events"
	"github.com/srgjo27/installation_proof/internal/adapter/handler"
	"github.com/srgjo27/installation_proof/internal/adapter/repository/memory"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"github.com/srgjo27/installation_proof/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type countingStorage struct{ n atomic.Int64 }

func (s *countingStorage) Upload(_ context.Context, p ports.Photo) (string, error) {
	return fmt.Sprintf("https://cdn.example.com/%d-%s", s.n.Add(1), p.Name), nil
}

type testServer struct {
	router     *gin.Engine
	advertiser uuid.UUID
	owner      uuid.UUID
	storage    *countingStorage
}

func newServer(t *testing.T, limiter *handler.RateLimiter) *testServer {
	t.Helper()
	return newServerBehind(t, limiter, nil)
}

func newServerBehind(t *testing.T, limiter *handler.RateLimiter, proxies []string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.DiscardHandler)
	store := memory.NewStore()
	storage := &countingStorage{}
	pub := events.NewLogPublisher(log)
	uploads := services.UploadConfig{
		Timeout:     time.Second,
		MaxAttempts: 1,
		BackOff:     func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}

	return &testServer{
		router: handler.NewRouter(handler.RouterDeps{
			Bookings:  services.NewBookingService(store.Bookings(), log),
			Proofs:    services.NewProofService(store.Bookings(), store.Proofs(), store.Payouts(), storage, pub, uploads, log),
			Reviews:   services.NewReviewService(store.Bookings(), store.Proofs(), storage, pub, uploads, log),
			JWTSecret: secret,
			Limiter:   limiter,
			Proxies:   proxies,
			Log:       log,
		}),
		advertiser: uuid.New(),
		owner:      uuid.New(),
		storage:    storage,
	}
}

func bearer(t *testing.T, sub uuid.UUID, role string) string {
	t.Helper()
	tok, err := handler.SignToken(secret, sub, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) asAdvertiser(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", bearer(t, s.advertiser, handler.RoleAdvertiser))
	return s.do(req)
}

func (s *testServer) asOwner(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", bearer(t, s.owner, handler.RoleSpaceOwner))
	return s.do(req)
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *testServer) createBooking(t *testing.T, start time.Time) string {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"space_id":         uuid.NewString(),
		"space_owner_id":   s.owner.String(),
		"start_date":       start,
		"end_date":         start.AddDate(0, 0, 7),
		"price_per_day":    10000,
		"installation_fee": 5000,
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := s.asAdvertiser(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func multipartRequest(t *testing.T, url string, fields map[string]string, photoCount int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < photoCount; i++ {
		fw, err := mw.CreateFormFile("photos", fmt.Sprintf("p%d.jpg", i))
		require.NoError(t, err)
		_, err = fw.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var e errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

func TestHealthz(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	s := newServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")

	w := s.do(req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	s := newServer(t, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/v1/bookings/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, w).Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)

	forged, err := handler.SignToken([]byte("other-secret"), s.advertiser, handler.RoleAdvertiser, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/bookings/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)
}

func TestRoleGuard(t *testing.T) {
	s := newServer(t, nil)

	w := s.asOwner(t, httptest.NewRequest(http.MethodPost, "/v1/proofs/"+uuid.NewString()+"/approve", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_AUTHORIZED", decodeError(t, w).Error.Code)

	w = s.asAdvertiser(t, multipartRequest(t, "/v1/bookings/"+uuid.NewString()+"/proofs", nil, 1))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateBooking_ValidationDetails(t *testing.T) {
	s := newServer(t, nil)
	body := `{"space_id":"nope","space_owner_id":"` + uuid.NewString() + `","start_date":"2025-03-15T00:00:00Z","end_date":"2025-03-10T00:00:00Z"}`

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := s.asAdvertiser(t, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "INVALID_REQUEST", e.Error.Code)
	assert.Equal(t, "uuid", e.Error.Details["SpaceID"])
	assert.Equal(t, "gtfield", e.Error.Details["EndDate"])
}

func TestCreateBooking_PriceAboveMaximum(t *testing.T) {
	s := newServer(t, nil)
	start := today().AddDate(0, 0, 3)
	body, _ := json.Marshal(map[string]any{
		"space_id":       uuid.NewString(),
		"space_owner_id": s.owner.String(),
		"start_date":     start,
		"end_date":       start.AddDate(0, 0, 7),
		"price_per_day":  int64(1) << 55,
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := s.asAdvertiser(t, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "lte", decodeError(t, w).Error.Details["PricePerDay"])
}

func TestInvalidPathID(t *testing.T) {
	s := newServer(t, nil)

	w := s.asAdvertiser(t, httptest.NewRequest(http.MethodGet, "/v1/bookings/123", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProofLifecycle_SubmitApprove(t *testing.T) {
	s := newServer(t, nil)
	bookingID := s.createBooking(t, today().AddDate(0, 0, 2))

	w := s.asOwner(t, httptest.NewRequest(http.MethodGet, "/v1/bookings/"+bookingID+"/installation-window", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var window map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &window))
	assert.Equal(t, "OPEN", window["state"])

	w = s.asOwner(t, multipartRequest(t, "/v1/bookings/"+bookingID+"/proofs", map[string]string{"note": "north face"}, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var proof struct {
		ID        string   `json:"id"`
		Status    string   `json:"status"`
		PhotoURLs []string `json:"photo_urls"`
		Note      string   `json:"note"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proof))
	assert.Equal(t, "PENDING", proof.Status)
	assert.Len(t, proof.PhotoURLs, 2)
	assert.Equal(t, "north face", proof.Note)

	w = s.asOwner(t, multipartRequest(t, "/v1/bookings/"+bookingID+"/proofs", nil, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DUPLICATE_ACTIVE_PROOF", decodeError(t, w).Error.Code)

	w = s.asAdvertiser(t, httptest.NewRequest(http.MethodPost, "/v1/proofs/"+proof.ID+"/approve", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var approved struct {
		Status     string `json:"status"`
		ApprovedBy struct {
			Source string `json:"source"`
		} `json:"approved_by"`
		Payout struct {
			FirstRentalPayout int64 `json:"first_rental_payout"`
			TotalPayout       int64 `json:"total_payout"`
			RemainingRental   int64 `json:"remaining_rental"`
		} `json:"payout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, "APPROVED", approved.Status)
	assert.Equal(t, "ADVERTISER", approved.ApprovedBy.Source)
	assert.Equal(t, int64(49000), approved.Payout.FirstRentalPayout)
	assert.Equal(t, int64(54000), approved.Payout.TotalPayout)
	assert.Equal(t, int64(21000), approved.Payout.RemainingRental)

	w = s.asAdvertiser(t, httptest.NewRequest(http.MethodPost, "/v1/proofs/"+proof.ID+"/approve", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PROOF_NOT_PENDING", decodeError(t, w).Error.Code)

	w = s.asOwner(t, httptest.NewRequest(http.MethodGet, "/v1/bookings/"+bookingID+"/proofs", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Proofs []json.RawMessage `json:"proofs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Proofs, 1)
}

func TestDispute(t *testing.T) {
	s := newServer(t, nil)
	bookingID := s.createBooking(t, today().AddDate(0, 0, 1))

	w := s.asOwner(t, multipartRequest(t, "/v1/bookings/"+bookingID+"/proofs", nil, 1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var proof struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proof))

	short := multipartRequest(t, "/v1/proofs/"+proof.ID+"/dispute", map[string]string{
		"issue_type":  "WRONG_LOCATION",
		"description": "wrong place",
	}, 2)
	w = s.asAdvertiser(t, short)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "DESCRIPTION_TOO_SHORT", e.Error.Code)
	assert.EqualValues(t, 20, e.Error.Details["min_length"])

	w = s.asAdvertiser(t, multipartRequest(t, "/v1/proofs/"+proof.ID+"/dispute", map[string]string{
		"issue_type":  "WRONG_LOCATION",
		"description": "billboard is on the opposite corner",
	}, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var issue struct {
		IssueType string   `json:"issue_type"`
		PhotoURLs []string `json:"photo_urls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Equal(t, "WRONG_LOCATION", issue.IssueType)
	assert.Len(t, issue.PhotoURLs, 2)

	w = s.asAdvertiser(t, httptest.NewRequest(http.MethodPost, "/v1/proofs/"+proof.ID+"/approve", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	// A fresh submission is allowed once the previous proof is disputed.
	w = s.asOwner(t, multipartRequest(t, "/v1/bookings/"+bookingID+"/proofs", nil, 1))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestSubmit_WindowTooEarly(t *testing.T) {
	s := newServer(t, nil)
	bookingID := s.createBooking(t, today().AddDate(0, 0, 30))

	w := s.asOwner(t, multipartRequest(t, "/v1/bookings/"+bookingID+"/proofs", nil, 1))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "WINDOW_TOO_EARLY", e.Error.Code)
	assert.Contains(t, e.Error.Details, "opens_at")
	assert.Zero(t, s.storage.n.Load())
}

func TestSubmit_RequiresMultipart(t *testing.T) {
	s := newServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/"+uuid.NewString()+"/proofs", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.asOwner(t, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_TooManyPhotosRejectedBeforeReading(t *testing.T) {
	s := newServer(t, nil)

	w := s.asOwner(t, multipartRequest(t, "/v1/bookings/"+uuid.NewString()+"/proofs", nil, 200))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "TOO_MANY_PHOTOS", e.Error.Code)
	assert.EqualValues(t, 5, e.Error.Details["max_photos"])
	assert.EqualValues(t, 200, e.Error.Details["photos"])
	assert.Zero(t, s.storage.n.Load())
}

func TestSubmit_BodyTooLarge(t *testing.T) {
	s := newServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("photos", "huge.jpg")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte{0xff}, 52<<20))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/"+uuid.NewString()+"/proofs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.asOwner(t, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, w).Error.Code)
}

func TestSubmit_StrangerIsForbidden(t *testing.T) {
	s := newServer(t, nil)
	bookingID := s.createBooking(t, today().AddDate(0, 0, 2))

	req := multipartRequest(t, "/v1/bookings/"+bookingID+"/proofs", nil, 1)
	req.Header.Set("Authorization", bearer(t, uuid.New(), handler.RoleSpaceOwner))
	w := s.do(req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_AUTHORIZED", decodeError(t, w).Error.Code)
}

func TestRateLimiter(t *testing.T) {
	s := newServer(t, handler.NewRateLimiter(0, 2))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	}

	w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	s := newServer(t, handler.NewRateLimiter(0, 2))

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		if s.do(req).Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
}

func TestRateLimiter_TrustedProxyForwardsClientIP(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	s := newServerBehind(t, handler.NewRateLimiter(0, 1), []string{"192.0.2.0/24"})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		assert.Equal(t, http.StatusOK, s.do(req).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.0")
	assert.Equal(t, http.StatusTooManyRequests, s.do(req).Code)
}
