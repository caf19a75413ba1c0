package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var meter = otel.Meter("github.com/srgjo27/installation_proof/internal/core/services")

// Workflow counters. They bind to whatever MeterProvider is global at
// startup; until one is installed they are no-ops.
var instruments = struct {
	submitted     metric.Int64Counter
	approved      metric.Int64Counter
	disputed      metric.Int64Counter
	payoutCents   metric.Int64Counter
	sweepDuration metric.Float64Histogram
}{
	submitted:   int64Counter("proofs.submitted", "Installation proofs accepted for review", "{proof}"),
	approved:    int64Counter("proofs.approved", "Proofs moved to APPROVED", "{proof}"),
	disputed:    int64Counter("proofs.disputed", "Proofs moved to DISPUTED", "{proof}"),
	payoutCents: int64Counter("payouts.released", "Total payout released to space owners", "{cent}"),
	sweepDuration: float64Histogram("auto_approval.sweep.duration", "Duration of one auto-approval sweep", "s",
		0.01, 0.05, 0.1, 0.5, 1, 5, 30),
}

func int64Counter(name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return c
}

func float64Histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	if err != nil {
		otel.Handle(err)
		return noop.Float64Histogram{}
	}
	return h
}
