package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/srgjo27/installation_proof/internal/core/ports"
)

type UploadConfig struct {
	Timeout     time.Duration
	MaxAttempts uint
	// BackOff builds the delay policy between attempts. Defaults to
	// exponential starting at 200ms.
	BackOff func() backoff.BackOff
}

func (c UploadConfig) withDefaults() UploadConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackOff == nil {
		c.BackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return b
		}
	}
	return c
}

// uploader pushes photos to storage with a per-attempt timeout and a
// bounded number of retries.
type uploader struct {
	storage ports.PhotoStorage
	cfg     UploadConfig
	log     *slog.Logger
}

func newUploader(storage ports.PhotoStorage, cfg UploadConfig, log *slog.Logger) *uploader {
	return &uploader{storage: storage, cfg: cfg.withDefaults(), log: log}
}

// uploadAll returns the durable URLs in the order of photos. Any photo
// that still fails after the last attempt fails the whole batch.
func (u *uploader) uploadAll(ctx context.Context, photos []ports.Photo) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		url, err := backoff.Retry(ctx, func() (string, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
			defer cancel()
			return u.storage.Upload(attemptCtx, p)
		},
			backoff.WithBackOff(u.cfg.BackOff()),
			backoff.WithMaxTries(u.cfg.MaxAttempts),
			backoff.WithNotify(func(err error, next time.Duration) {
				u.log.Warn("photo upload failed, retrying", "photo", p.Name, "retry_in", next, "err", err)
			}),
		)
		if err != nil {
			return nil, domain.NewError(domain.ErrUploadFailed, "photo upload failed, please retry", map[string]any{
				"photo":    p.Name,
				"attempts": u.cfg.MaxAttempts,
			}).Wrap(err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}
