package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/srgjo27/installation_proof/internal/core/services"
)

type RouterDeps struct {
	Bookings  *services.BookingService
	Proofs    *services.ProofService
	Reviews   *services.ReviewService
	JWTSecret []byte
	Limiter   *RateLimiter
	// Proxies whose X-Forwarded-For is believed. Empty means the peer
	// address is the client.
	Proxies   []string
	Log       *slog.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxFormMemory
	if err := r.SetTrustedProxies(d.Proxies); err != nil {
		d.Log.Error("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), RequestID(), RequestLogger(d.Log))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v := validator.New()
	bh := NewBookingHandler(d.Bookings, v, d.Log)
	ph := NewProofHandler(d.Proofs, d.Log)
	rh := NewReviewHandler(d.Reviews, d.Log)

	v1 := r.Group("/v1")
	v1.Use(JWTAuth(d.JWTSecret))
	{
		v1.POST("/bookings", RequireRole(RoleAdvertiser), bh.Create)
		v1.GET("/bookings/:id", bh.Get)
		v1.POST("/bookings/:id/cancel", RequireRole(RoleAdvertiser), bh.Cancel)
		v1.GET("/bookings/:id/installation-window", bh.Window)
		v1.GET("/bookings/:id/payout-estimate", bh.PayoutEstimate)

		v1.GET("/bookings/:id/proofs", ph.List)
		v1.POST("/bookings/:id/proofs", RequireRole(RoleSpaceOwner), ph.Submit)
		v1.GET("/proofs/:id", ph.Get)

		advertiser := v1.Group("")
		advertiser.Use(RequireRole(RoleAdvertiser))
		advertiser.POST("/proofs/:id/approve", rh.Approve)
		advertiser.POST("/proofs/:id/dispute", rh.Dispute)
	}

	return r
}
