// CLAUDE:SUMMARY Bounded-concurrency fan-out: semaphore-gated tasks, input-order results, per-task failure isolation.
// Package pool runs independent tasks under a concurrency bound.
//
// Results are positioned by input index, never by completion order, so a
// caller can re-pair each result with the input that produced it. A failed
// task leaves a nil slot and never cancels or blocks its siblings.
package pool

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Task produces one value. A non-nil error marks the slot as failed.
type Task[T any] func(ctx context.Context) (*T, error)

// Config configures a pool run.
type Config struct {
	// MaxConcurrency bounds the number of tasks running at once. Default: 3.
	MaxConcurrency int64

	// JitterMin/JitterMax bound the random delay inserted before each task
	// starts, staggering externally visible actions (network calls, browser
	// launches) so concurrent slots do not burst in lockstep. Zero = no jitter.
	JitterMin time.Duration
	JitterMax time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = 3
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Run executes all tasks and returns one result slot per task, in input
// order. A slot is nil when its task returned an error, panicked, or the
// context was cancelled before the task acquired a semaphore slot.
func Run[T any](ctx context.Context, cfg Config, tasks []Task[T]) []*T {
	cfg.defaults()

	sem := semaphore.NewWeighted(cfg.MaxConcurrency)
	results := make([]*T, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					cfg.Logger.Error("pool: task panic", "index", i, "panic", r)
				}
			}()

			if err := sem.Acquire(ctx, 1); err != nil {
				cfg.Logger.Warn("pool: slot not acquired", "index", i, "error", err)
				return
			}
			defer sem.Release(1)

			sleepJitter(ctx, cfg.JitterMin, cfg.JitterMax)

			v, err := task(ctx)
			if err != nil {
				cfg.Logger.Warn("pool: task failed", "index", i, "error", err)
				return
			}
			results[i] = v
		}(i, task)
	}
	wg.Wait()

	return results
}

// sleepJitter sleeps a random duration in [min, max], abandoning the sleep
// on context cancellation.
func sleepJitter(ctx context.Context, min, max time.Duration) {
	if max <= 0 || max < min {
		return
	}
	d := min
	if span := max - min; span > 0 {
		d += rand.N(span)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
