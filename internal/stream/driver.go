// Package stream drives a single subscriber connection: it registers the
// connection's sink, announces the subscription, keeps the stream alive with
// heartbeats, and guarantees the sink is unregistered and the heartbeat
// stopped on every exit path.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/metrics"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultConnectedMessage  = "Connected to news article updates"
	heartbeatText            = "heartbeat"
)

var ErrSinkClosed = errors.New("sink closed")

// State is the lifecycle position of a connection.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type Config struct {
	HeartbeatInterval time.Duration
	ConnectedMessage  string
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ConnectedMessage == "" {
		c.ConnectedMessage = DefaultConnectedMessage
	}
	return c
}

// closer is implemented by sinks that learn about a dead stream on their own,
// e.g. when a broadcast write fails or the peer hangs up.
type closer interface {
	Done() <-chan struct{}
}

// Driver owns one sink for the lifetime of one connection.
type Driver struct {
	registry *events.Registry
	sink     events.Sink
	cfg      Config
	clock    clockwork.Clock
	logger   zerolog.Logger
	state    atomic.Int32
}

type Option func(*Driver)

func WithClock(clock clockwork.Clock) Option {
	return func(d *Driver) { d.clock = clock }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

func NewDriver(registry *events.Registry, sink events.Sink, cfg Config, opts ...Option) *Driver {
	d := &Driver{
		registry: registry,
		sink:     sink,
		cfg:      cfg.withDefaults(),
		clock:    clockwork.NewRealClock(),
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Driver) State() State {
	return State(d.state.Load())
}

// Run registers the sink, writes the connected comment and then sends a
// heartbeat comment every interval until ctx is cancelled, a heartbeat write
// fails, or the sink reports it is closed. Cancellation returns nil. The sink
// is unregistered and the ticker stopped before Run returns.
func (d *Driver) Run(ctx context.Context) error {
	d.state.Store(int32(StateConnecting))
	defer d.close()

	d.registry.Register(d.sink)
	if err := d.sink.Write(events.EncodeComment(d.cfg.ConnectedMessage)); err != nil {
		return fmt.Errorf("write connected frame: %w", err)
	}
	d.state.Store(int32(StateOpen))

	var sinkDone <-chan struct{}
	if c, ok := d.sink.(closer); ok {
		sinkDone = c.Done()
	}

	ticker := d.clock.NewTicker(d.cfg.HeartbeatInterval)
	defer ticker.Stop()

	heartbeat := events.EncodeComment(heartbeatText)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sinkDone:
			return ErrSinkClosed
		case <-ticker.Chan():
			if err := d.sink.Write(heartbeat); err != nil {
				metrics.HeartbeatFailures.Inc()
				d.logger.Debug().Err(err).Msg("heartbeat failed")
				return fmt.Errorf("write heartbeat: %w", err)
			}
		}
	}
}

func (d *Driver) close() {
	d.registry.Unregister(d.sink)
	d.state.Store(int32(StateClosed))
}
