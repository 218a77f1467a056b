package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same policy as Cors: any origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type EventsHandler struct {
	Registry *events.Registry
	Stream   stream.Config
	Clock    clockwork.Clock
	Logger   zerolog.Logger
}

func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	sink, err := stream.NewResponseSink(w)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}
	// The writer is invalid once we return; late broadcasts must fail.
	defer sink.Close()

	h.run(r, sink, "sse")
}

func (h EventsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.Logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	sink := stream.NewWebSocketSink(conn)
	defer sink.Close()

	h.run(r, sink, "websocket")
}

func (h EventsHandler) run(r *http.Request, sink events.Sink, transport string) {
	logger := h.Logger.With().
		Str("subscriber_id", uuid.NewString()).
		Str("request_id", RequestIDFrom(r.Context())).
		Str("transport", transport).
		Logger()

	d := stream.NewDriver(h.Registry, sink, h.Stream,
		stream.WithClock(h.Clock),
		stream.WithLogger(logger),
	)
	if err := d.Run(r.Context()); err != nil {
		logger.Debug().Err(err).Msg("stream ended")
	}
}
