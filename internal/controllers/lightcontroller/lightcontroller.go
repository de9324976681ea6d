// Package lightcontroller drives the grow light from the hour-of-day
// schedule. The loop evaluates once an hour; while the wall clock still
// reports the epoch year it retries every second so the first synced
// evaluation happens without waiting out a full hour.
package lightcontroller

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/hydro-controller/internal/clock"
	"github.com/thatsimonsguy/hydro-controller/internal/model"
)

const (
	UnsyncedRetryInterval = time.Second
	EvaluationInterval    = time.Hour
)

// UnsyncedPolicy chooses what happens to the light before the clock syncs.
type UnsyncedPolicy string

const (
	UnsyncedForceOff UnsyncedPolicy = "force_off"
	UnsyncedHold     UnsyncedPolicy = "hold"
)

// WriteFailurePolicy chooses how a failed line write is handled. Neither
// policy stops the loop.
type WriteFailurePolicy string

const (
	WriteFailureIgnore WriteFailurePolicy = "ignore"
	WriteFailureRetry  WriteFailurePolicy = "retry"
)

const DefaultWriteRetries = 3

type Options struct {
	UnsyncedPolicy     UnsyncedPolicy
	WriteFailurePolicy WriteFailurePolicy
	WriteRetries       int
	// OnEvaluate is called after every tick, outside the light's lock.
	OnEvaluate func(Evaluation)
}

// Evaluation describes one tick of the loop.
type Evaluation struct {
	Time         time.Time
	Synchronized bool
	Hour         int
	Active       bool
	Level        model.Level
	Wrote        bool
	Err          error
	Next         time.Duration
}

type Controller struct {
	light *Light
	clock clock.Clock
	opts  Options
	sleep func(ctx context.Context, d time.Duration) bool
}

func New(light *Light, wall clock.Clock, opts Options) *Controller {
	if opts.UnsyncedPolicy == "" {
		opts.UnsyncedPolicy = UnsyncedForceOff
	}
	if opts.WriteFailurePolicy == "" {
		opts.WriteFailurePolicy = WriteFailureIgnore
	}
	if opts.WriteRetries <= 0 {
		opts.WriteRetries = DefaultWriteRetries
	}
	return &Controller{
		light: light,
		clock: wall,
		opts:  opts,
		sleep: sleepContext,
	}
}

// Start runs the loop on its own goroutine for the life of ctx.
func (c *Controller) Start(ctx context.Context) {
	go c.Run(ctx)
}

// Run evaluates and sleeps until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	log.Info().
		Str("unsynced_policy", string(c.opts.UnsyncedPolicy)).
		Str("write_failure_policy", string(c.opts.WriteFailurePolicy)).
		Msg("Starting light controller")

	for {
		ev := c.Tick(ctx)
		if !c.sleep(ctx, ev.Next) {
			log.Info().Msg("Light controller stopped")
			return
		}
	}
}

// Tick performs one read-evaluate-write pass and reports how long to sleep.
func (c *Controller) Tick(ctx context.Context) Evaluation {
	ev := c.evaluate(ctx, c.clock.Now().UTC())

	switch {
	case ev.Err != nil:
		log.Error().Err(ev.Err).
			Str("level", ev.Level.String()).
			Msg("Light write failed, keeping last commanded state")
	case !ev.Synchronized:
		log.Debug().
			Time("clock", ev.Time).
			Bool("wrote", ev.Wrote).
			Msg("Clock not synchronized, retrying")
	case ev.Active:
		log.Info().Int("hour", ev.Hour).Msg("Turning on light")
	default:
		log.Info().Int("hour", ev.Hour).Msg("Turning off light")
	}

	if c.opts.OnEvaluate != nil {
		c.opts.OnEvaluate(ev)
	}
	return ev
}

func (c *Controller) evaluate(ctx context.Context, now time.Time) Evaluation {
	ev := Evaluation{
		Time:         now,
		Synchronized: clock.Synchronized(now),
		Hour:         now.Hour(),
		Next:         EvaluationInterval,
	}

	c.light.mu.Lock()
	defer c.light.mu.Unlock()

	if !ev.Synchronized {
		ev.Next = UnsyncedRetryInterval
		if c.opts.UnsyncedPolicy == UnsyncedHold {
			ev.Level = c.light.level
			return ev
		}
		ev.Level = model.Low
	} else {
		ev.Active = c.light.schedule.Active(ev.Hour)
		ev.Level = model.Level(ev.Active)
	}

	ev.Err = c.light.setLocked(ev.Level, func(level model.Level) error {
		return c.write(ctx, level)
	})
	ev.Wrote = ev.Err == nil
	return ev
}

// write runs under the light's lock; MaxElapsedTime bounds how long a retry
// can hold off a schedule update.
func (c *Controller) write(ctx context.Context, level model.Level) error {
	set := func() error { return c.light.line.Set(level) }
	if c.opts.WriteFailurePolicy != WriteFailureRetry {
		return set()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	return backoff.RetryNotify(set,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.opts.WriteRetries)), ctx),
		func(err error, wait time.Duration) {
			log.Warn().Err(err).Dur("wait", wait).Msg("Light write failed, retrying")
		})
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
