package types

import (
	"fmt"
	"time"
)

// PollConfig defines the bounds of a polling wait: how long to keep
// checking, how often to check, and how often to report progress. Every
// suspension in a driver (MFA wait, post-auth sentinel, post-submit
// classification) is governed by one of these.
type PollConfig struct {
	// Timeout is the hard ceiling on the whole wait. A zero value means
	// use the engine default (5 minutes).
	Timeout time.Duration

	// Interval is the delay between checks. A zero value means use the
	// engine default (2 seconds).
	Interval time.Duration

	// ProgressEvery is how often a still-waiting progress line is logged.
	// A zero value means every 30 seconds.
	ProgressEvery time.Duration
}

// Validate checks that the polling configuration is internally consistent:
// the interval must not exceed the timeout, and neither may be negative.
func (c PollConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("poll timeout %v is negative", c.Timeout)
	}
	if c.Interval < 0 {
		return fmt.Errorf("poll interval %v is negative", c.Interval)
	}
	if c.Timeout > 0 && c.Interval > 0 && c.Interval > c.Timeout {
		return fmt.Errorf("poll interval %v exceeds timeout %v", c.Interval, c.Timeout)
	}
	return nil
}

// ResolveTimeout returns the effective wait ceiling: the configured
// timeout when set, otherwise the engine default of 5 minutes.
func (c PollConfig) ResolveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 5 * time.Minute
}

// ResolveInterval returns the effective check interval: the configured
// interval when set, otherwise 2 seconds.
func (c PollConfig) ResolveInterval() time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	return 2 * time.Second
}

// ResolveProgressEvery returns the effective progress reporting period:
// the configured period when set, otherwise 30 seconds.
func (c PollConfig) ResolveProgressEvery() time.Duration {
	if c.ProgressEvery > 0 {
		return c.ProgressEvery
	}
	return 30 * time.Second
}
