package httpapi

import (
	"database/sql"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"newsdesk-engine/internal/config"
	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/ratelimit"
)

type Deps struct {
	DB *sql.DB

	Publisher events.Publisher
	Registry  *events.Registry

	Config     config.Config
	ConfigPath string

	// CleanupSecret guards /api/cron/cleanup. Empty disables the endpoint.
	CleanupSecret string

	// Limiter throttles mutation endpoints; nil disables throttling.
	Limiter *ratelimit.KeyLimiter

	Clock  clockwork.Clock
	Logger zerolog.Logger
}

func (d Deps) clock() clockwork.Clock {
	if d.Clock == nil {
		return clockwork.NewRealClock()
	}
	return d.Clock
}
