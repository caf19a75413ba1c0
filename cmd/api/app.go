package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/installation_proof/internal/adapter/events"
	"github.com/srgjo27/installation_proof/internal/adapter/lock"
	"github.com/srgjo27/installation_proof/internal/adapter/media"
	"github.com/srgjo27/installation_proof/internal/adapter/repository/memory"
	"github.com/srgjo27/installation_proof/internal/adapter/repository/postgres"
	"github.com/srgjo27/installation_proof/internal/config"
	"github.com/srgjo27/installation_proof/internal/core/ports"
	"github.com/srgjo27/installation_proof/internal/core/services"
	"github.com/srgjo27/installation_proof/internal/platform/database"
)

type app struct {
	cfg      config.App
	log      *slog.Logger
	bookings *services.BookingService
	proofs   *services.ProofService
	reviews  *services.ReviewService
	approver *services.AutoApprover
	closers  []func() error
}

type repositories struct {
	bookings ports.BookingRepository
	proofs   ports.ProofRepository
	payouts  ports.PayoutRepository
}

func openRepositories(ctx context.Context, cfg config.App, log *slog.Logger) (repositories, *sql.DB, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return repositories{
			bookings: store.Bookings(),
			proofs:   store.Proofs(),
			payouts:  store.Payouts(),
		}, nil, nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.Database(), log)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		bookings: postgres.NewBookingRepository(db),
		proofs:   postgres.NewProofRepository(db),
		payouts:  postgres.NewPayoutRepository(db),
	}, db, nil
}

func buildApp(ctx context.Context, cfg config.App, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	repos, db, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if db != nil {
		a.closers = append(a.closers, db.Close)
	}

	storage, err := media.NewS3Storage(ctx, media.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		Prefix:        cfg.S3Prefix,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	var pub ports.EventPublisher
	if cfg.RabbitURL == "" {
		log.Warn("RABBIT_URL not set, events are only logged")
		pub = events.NewLogPublisher(log)
	} else {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		a.closers = append(a.closers, amqpPub.Close)
		pub = amqpPub
	}

	var lease ports.Lease
	if cfg.RedisAddr != "" {
		log.Info("connecting to redis", "addr", cfg.RedisAddr)
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Every replica then sweeps; the conditional update keeps that correct.
			log.Warn("redis unavailable, sweeping without lease", "err", err)
			_ = rdb.Close()
		} else {
			a.closers = append(a.closers, rdb.Close)
			lease = lock.NewRedisLease(rdb)
		}
	}

	uploadCfg := services.UploadConfig{
		Timeout:     cfg.UploadTimeout,
		MaxAttempts: cfg.UploadMaxAttempts,
	}

	a.bookings = services.NewBookingService(repos.bookings, log)
	a.proofs = services.NewProofService(repos.bookings, repos.proofs, repos.payouts, storage, pub, uploadCfg, log)
	a.reviews = services.NewReviewService(repos.bookings, repos.proofs, storage, pub, uploadCfg, log)
	a.approver = services.NewAutoApprover(repos.proofs, a.reviews, lease, services.AutoApproverConfig{
		Interval:  cfg.SweepInterval,
		BatchSize: cfg.SweepBatchSize,
		LeaseTTL:  cfg.SweepLeaseTTL,
	}, log)

	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}
