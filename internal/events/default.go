package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	defaultOnce        sync.Once
	defaultBroadcaster *Broadcaster
)

// Default returns the process-wide broadcaster and its registry. It is built
// on first use with the global zerolog logger, so configure logging before
// calling it, and it is never reset. Tests construct their own instances.
func Default() *Broadcaster {
	defaultOnce.Do(func() {
		logger := log.Logger.With().Str("component", "events").Logger()
		defaultBroadcaster = NewBroadcaster(
			NewRegistry(WithRegistryLogger(logger)),
			WithBroadcasterLogger(logger),
		)
	})
	return defaultBroadcaster
}
