// Package retry reruns failing operations with exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/orgball2608/contentflow/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

// Permanent marks err as final; Do returns it without another attempt.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs operation until it succeeds, ctx ends, it fails with a Permanent
// error or cfg.MaxRetries retries have failed. The last error is returned.
func Do(ctx context.Context, log logger.Logger, name string, cfg Config, operation func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier
	bo.MaxElapsedTime = 0
	bo.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)

	attempts := 0
	err := backoff.RetryNotify(func() error {
		attempts++
		return operation(ctx)
	}, policy, func(err error, next time.Duration) {
		log.Warn("Operation failed, retrying",
			"operation", name,
			"attempt", attempts,
			"error", err,
			"next_attempt_in", next.Round(time.Millisecond).String())
	})
	if err != nil && attempts > 1 {
		log.Warn("Operation failed after retries", "operation", name, "attempts", attempts, "error", err)
	}
	return err
}
