package events

import (
	"github.com/rs/zerolog"

	"newsdesk-engine/internal/metrics"
)

// Broadcaster writes event frames to every sink in a Registry.
type Broadcaster struct {
	registry *Registry
	logger   zerolog.Logger
}

type BroadcasterOption func(*Broadcaster)

func WithBroadcasterLogger(logger zerolog.Logger) BroadcasterOption {
	return func(b *Broadcaster) { b.logger = logger }
}

func NewBroadcaster(registry *Registry, opts ...BroadcasterOption) *Broadcaster {
	b := &Broadcaster{
		registry: registry,
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// Publish encodes payload once and writes the frame to every sink registered
// when iteration begins. A sink whose write fails is unregistered before
// Publish returns; its error is logged and never returned. The only error
// Publish returns is a payload that cannot be encoded, in which case nothing
// is written.
func (b *Broadcaster) Publish(name EventName, payload any) error {
	frame, err := EncodeEvent(name, payload)
	if err != nil {
		return err
	}
	metrics.EventsPublished.WithLabelValues(string(name)).Inc()

	sinks := b.registry.Snapshot()
	failed := 0
	for _, s := range sinks {
		if err := s.Write(frame); err != nil {
			failed++
			metrics.SinkWriteFailures.Inc()
			b.logger.Warn().Err(err).Str("event", string(name)).Msg("error sending to client")
			b.registry.Unregister(s)
			continue
		}
		metrics.FramesDelivered.Inc()
	}

	b.logger.Debug().
		Str("event", string(name)).
		Int("delivered", len(sinks)-failed).
		Int("failed", failed).
		Int("total_clients", b.registry.Len()).
		Msg("broadcasted event")
	return nil
}
