package driver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/nexus-hq/nexus/types"
)

// ErrPollTimeout is returned when a bounded wait expires without the
// condition becoming true. Callers map it onto the phase-appropriate
// taxonomy code (MFA_TIMEOUT, NAVIGATION_FAILED).
var ErrPollTimeout = errors.New("driver: poll timed out")

// Poll runs check at the configured interval until it returns true, the
// timeout expires, or the context is cancelled. A still-waiting progress
// line is logged at the configured period. A non-nil error from check ends
// the wait immediately.
func Poll(ctx context.Context, cfg types.PollConfig, logger *slog.Logger, what string, check func(ctx context.Context) (bool, error)) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout := cfg.ResolveTimeout()
	interval := cfg.ResolveInterval()
	progressEvery := cfg.ResolveProgressEvery()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()
	progress := time.NewTicker(progressEvery)
	defer progress.Stop()

	started := time.Now()

	// First check happens immediately, not one interval in.
	ok, err := check(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			logger.Warn("wait expired", "waiting_for", what, "elapsed", time.Since(started).Round(time.Second))
			return ErrPollTimeout
		case <-progress.C:
			logger.Info("still waiting", "waiting_for", what, "elapsed", time.Since(started).Round(time.Second))
		case <-tick.C:
			ok, err := check(ctx)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}
	}
}
