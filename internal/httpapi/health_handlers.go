package httpapi

import (
	"net/http"

	"newsdesk-engine/internal/events"
)

type HealthHandler struct {
	Registry *events.Registry
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	subs := 0
	if h.Registry != nil {
		subs = h.Registry.Len()
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"subscribers": subs,
	})
}
