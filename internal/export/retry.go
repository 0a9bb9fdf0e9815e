package export

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// DefaultBackoffSchedule is the delay before retry attempt N, indexed by
// how many attempts have already failed. Deliberately a fixed lookup
// table, not computed exponential backoff; past the end the last entry is
// reused.
var DefaultBackoffSchedule = []time.Duration{
	500 * time.Millisecond,
	1000 * time.Millisecond,
	2000 * time.Millisecond,
}

// DefaultMaxAttempts bounds the total number of attempts, the first one
// included.
const DefaultMaxAttempts = 3

// RetryNotifyFunc receives the user-visible "retrying" notice emitted
// before each retry delay. attempt is the upcoming attempt number.
type RetryNotifyFunc func(attempt, maxAttempts int, err error)

// AttemptFunc is called at the start of every attempt.
type AttemptFunc func(attempt, maxAttempts int)

// Orchestrator wraps a unit of work with bounded retries over the fixed
// backoff schedule. Side effects of failed attempts are not rolled back;
// every attempt starts the work from scratch.
type Orchestrator struct {
	MaxAttempts int
	Schedule    []time.Duration

	// OnAttempt and OnRetry decouple the retry loop from any specific
	// notification mechanism; both are optional.
	OnAttempt AttemptFunc
	OnRetry   RetryNotifyFunc
}

// scheduleBackoff walks a fixed delay table, reusing the final entry once
// the table is exhausted. Never signals stop on its own; the attempt
// ceiling comes from retry.WithMaxRetries.
type scheduleBackoff struct {
	schedule []time.Duration
	idx      int
}

func (b *scheduleBackoff) Next() (time.Duration, bool) {
	i := b.idx
	if i >= len(b.schedule) {
		i = len(b.schedule) - 1
	}
	b.idx++
	return b.schedule[i], false
}

// Execute runs work until it succeeds, the attempt ceiling is hit, or ctx
// is canceled. Cancellation aborts a pending delay without emitting
// further notices. After exhaustion the last error is returned wrapped in
// ExhaustedRetriesError.
func (o *Orchestrator) Execute(ctx context.Context, work func(context.Context) error) error {
	maxAttempts := o.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	schedule := o.Schedule
	if len(schedule) == 0 {
		schedule = DefaultBackoffSchedule
	}

	var b retry.Backoff = &scheduleBackoff{schedule: schedule}
	b = retry.WithMaxRetries(uint64(maxAttempts-1), b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if o.OnAttempt != nil {
			o.OnAttempt(attempt, maxAttempts)
		}
		err := work(ctx)
		if err == nil {
			return nil
		}
		if attempt < maxAttempts && o.OnRetry != nil && ctx.Err() == nil &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			// The notice precedes the delay so a cancellation during
			// the sleep never produces a notice for an attempt that
			// will not run.
			o.OnRetry(attempt+1, maxAttempts, err)
		}
		return retry.RetryableError(err)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ExhaustedRetriesError{Attempts: attempt, Err: err}
}
