package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type Task func(ctx context.Context) error

type options struct {
	clock  clockwork.Clock
	logger zerolog.Logger
}

type Option func(*options)

func WithClock(c clockwork.Clock) Option { return func(o *options) { o.clock = c } }

func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.logger = l } }

// Every runs task once immediately and then on every tick until ctx is done.
// Task errors are logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, task Task, opts ...Option) {
	o := options{clock: clockwork.NewRealClock(), logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	logger := o.logger.With().Str("task", name).Logger()

	run := func() {
		start := o.clock.Now()
		if err := task(ctx); err != nil {
			logger.Error().Err(err).Msg("scheduled task failed")
			return
		}
		logger.Debug().Dur("took", o.clock.Since(start)).Msg("scheduled task done")
	}

	t := o.clock.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			run()
		}
	}
}
