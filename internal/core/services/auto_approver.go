package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"go.opentelemetry.io/otel/attribute"
)

const sweepLeaseKey = "installation_proof:auto_approval:sweep"

type proofAutoApprover interface {
	AutoApprove(ctx context.Context, proofID uuid.UUID) (*ApprovalResult, error)
}

type AutoApproverConfig struct {
	Interval  time.Duration
	BatchSize int
	LeaseTTL  time.Duration
}

type SweepResult struct {
	Skipped   bool
	Scanned   int
	Approved  int
	Conflicts int
	Failed    int
}

// AutoApprover promotes proofs whose review period has elapsed. Deadlines
// come from stored submission times, so a sweep that runs late or twice
// approves the same set once.
type AutoApprover struct {
	proofRepo ports.ProofRepository
	review    proofAutoApprover
	lease     ports.Lease
	cfg       AutoApproverConfig
	log       *slog.Logger
	now       func() time.Time
}

func NewAutoApprover(proofRepo ports.ProofRepository, review proofAutoApprover, lease ports.Lease, cfg AutoApproverConfig, log *slog.Logger) *AutoApprover {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = time.Minute
	}
	return &AutoApprover{
		proofRepo: proofRepo,
		review:    review,
		lease:     lease,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

func (a *AutoApprover) Run(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	a.log.Info("auto-approval worker started", "interval", a.cfg.Interval)
	a.sweepAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("auto-approval worker stopped")
			return
		case <-ticker.C:
			a.sweepAndLog(ctx)
		}
	}
}

func (a *AutoApprover) sweepAndLog(ctx context.Context) {
	res, err := a.Sweep(ctx)
	if err != nil {
		a.log.Error("auto-approval sweep failed", "err", err)
		return
	}
	if res.Scanned > 0 {
		a.log.Info("auto-approval sweep done",
			"scanned", res.Scanned,
			"approved", res.Approved,
			"conflicts", res.Conflicts,
			"failed", res.Failed,
		)
	}
}

// Sweep runs one scan. When another replica holds the lease the sweep is
// skipped; when the lease store is down it proceeds, since the conditional
// update keeps concurrent sweeps correct.
func (a *AutoApprover) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := tracer.Start(ctx, "proof.auto_approval_sweep")
	defer span.End()

	start := time.Now()
	defer func() {
		instruments.sweepDuration.Record(ctx, time.Since(start).Seconds())
	}()

	var res SweepResult

	if a.lease != nil {
		ok, err := a.lease.Acquire(ctx, sweepLeaseKey, a.cfg.LeaseTTL)
		switch {
		case err != nil:
			a.log.Warn("sweep lease unavailable, sweeping anyway", "err", err)
		case !ok:
			res.Skipped = true
			return res, nil
		default:
			defer func() {
				if err := a.lease.Release(context.WithoutCancel(ctx), sweepLeaseKey); err != nil {
					a.log.Warn("release sweep lease", "err", err)
				}
			}()
		}
	}

	for {
		cutoff := a.now().Add(-domain.AutoApprovalDelay)
		ids, err := a.proofRepo.ListDueForAutoApproval(ctx, cutoff, a.cfg.BatchSize)
		if err != nil {
			return res, err
		}

		approved := 0
		for _, id := range ids {
			res.Scanned++
			_, err := a.review.AutoApprove(ctx, id)
			switch {
			case err == nil:
				approved++
			case domain.IsConflict(err):
				res.Conflicts++
			default:
				res.Failed++
				a.log.Error("auto-approve proof", "proof_id", id, "err", err)
			}
		}
		res.Approved += approved

		if len(ids) < a.cfg.BatchSize || approved == 0 || ctx.Err() != nil {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("scanned", res.Scanned),
		attribute.Int("approved", res.Approved),
	)
	return res, nil
}
