package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultProbeInterval = 250 * time.Millisecond
	maxBackoff           = 2 * time.Second
	maxProbeAttempts     = 5
)

// waitForAPI calls probe until it succeeds, backing off between failures.
// It gives up after maxProbeAttempts and returns the last error.
func waitForAPI(ctx context.Context, probe func(context.Context) error, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var err error
	for attempt := 0; attempt < maxProbeAttempts; attempt++ {
		if err = probe(ctx); err == nil {
			return nil
		}
		delay := calculateBackoff(attempt, interval)
		logger.Debug("catalog probe failed",
			zap.Int("attempt", attempt+1),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		if attempt == maxProbeAttempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// calculateBackoff doubles interval per failure, capped at maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
