// Package retry runs startup probes and other idempotent operations with
// jittered exponential backoff.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Attempts is how many times Do runs an operation before giving up.
const Attempts = 3

const (
	baseWait = time.Second
	jitter   = 0.25
)

// Backoff is the wait before retry number attempt (0-indexed): 1s, 2s,
// 4s and so on, each moved up to 25% either way.
func Backoff(attempt int) time.Duration {
	base := baseWait << max(attempt, 0)
	spread := float64(base) * jitter
	return base + time.Duration(spread*(2*rand.Float64()-1)) // #nosec G404 -- retry jitter
}

// Do runs op until it succeeds, returns an error again rejects, or Attempts
// runs are used up. A nil logger keeps retries quiet.
func Do(ctx context.Context, logger *slog.Logger, what string, again func(error) bool, op func() error) error {
	var err error
	for attempt := range Attempts {
		if attempt > 0 {
			wait := Backoff(attempt - 1)
			if logger != nil {
				logger.WarnContext(ctx, what+" failed, retrying",
					slog.Int("attempt", attempt+1),
					slog.Int("max_attempts", Attempts),
					slog.Duration("backoff", wait),
					slog.String("error", err.Error()),
				)
			}
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%s: %w", what, ctx.Err())
			case <-t.C:
			}
		}
		if err = op(); err == nil || !again(err) {
			return err
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", what, Attempts, err)
}

// Always retries every error.
func Always(error) bool { return true }
