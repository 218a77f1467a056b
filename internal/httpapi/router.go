package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdesk-engine/internal/stream"
)

// NewRouter wires every route onto a chi router.
func NewRouter(d Deps) http.Handler {
	clock := d.clock()
	logger := d.Logger

	r := chi.NewRouter()
	r.Use(RequestID, Recover(logger), AccessLog(logger), Cors)

	r.Get("/health", HealthHandler{Registry: d.Registry}.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		eh := EventsHandler{
			Registry: d.Registry,
			Stream: stream.Config{
				HeartbeatInterval: d.Config.HeartbeatInterval(),
				ConnectedMessage:  d.Config.Stream.ConnectedMessage,
			},
			Clock:  clock,
			Logger: logger,
		}
		r.Get("/events", eh.ServeSSE)
		r.Get("/events/ws", eh.ServeWS)

		ah := ArticlesHandler{
			DB:        d.DB,
			Publisher: d.Publisher,
			TTL:       d.Config.ArticleTTL(),
			Clock:     clock,
			Logger:    logger,
		}
		limited := RateLimit(d.Limiter, logger)
		r.Get("/articles", ah.List)
		r.Get("/articles/{id}", ah.Get)
		r.With(limited).Post("/articles", ah.Create)
		r.With(limited).Put("/articles/{id}", ah.Update)
		r.With(limited).Delete("/articles/{id}", ah.Delete)

		ch := CleanupHandler{
			DB:        d.DB,
			Publisher: d.Publisher,
			Secret:    d.CleanupSecret,
			Clock:     clock,
			Logger:    logger,
		}
		r.Get("/cron/cleanup", ch.Run)

		cfg := ConfigHandler{Config: d.Config, UserCfgPath: d.ConfigPath}
		r.Get("/config", cfg.Get)
		r.Get("/config/path", cfg.Path)
		r.Get("/config/validate", cfg.Validate)
	})

	return r
}
