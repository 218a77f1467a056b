package events

import (
	"sync"

	"github.com/rs/zerolog"

	"newsdesk-engine/internal/metrics"
)

// Registry is the set of live sinks. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	sinks  map[Sink]struct{}
	logger zerolog.Logger
}

type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for membership changes.
func WithRegistryLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sinks:  make(map[Sink]struct{}),
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds s. Registering a sink that is already present changes nothing.
func (r *Registry) Register(s Sink) {
	r.mu.Lock()
	if _, ok := r.sinks[s]; ok {
		r.mu.Unlock()
		return
	}
	r.sinks[s] = struct{}{}
	total := len(r.sinks)
	r.mu.Unlock()

	metrics.Subscribers.Inc()
	r.logger.Info().Int("total_clients", total).Msg("client connected")
}

// Unregister removes s and reports whether it was present. Removing an absent
// sink is a no-op, so the heartbeat, broadcast and disconnect paths may all
// call it for the same sink.
func (r *Registry) Unregister(s Sink) bool {
	r.mu.Lock()
	if _, ok := r.sinks[s]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.sinks, s)
	total := len(r.sinks)
	r.mu.Unlock()

	metrics.Subscribers.Dec()
	r.logger.Info().Int("total_clients", total).Msg("client disconnected")
	return true
}

func (r *Registry) Contains(s Sink) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sinks[s]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}

// Snapshot returns the current members. The slice is owned by the caller;
// later membership changes do not affect it.
func (r *Registry) Snapshot() []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sink, 0, len(r.sinks))
	for s := range r.sinks {
		out = append(out, s)
	}
	return out
}
