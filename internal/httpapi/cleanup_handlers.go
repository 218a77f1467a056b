package httpapi

import (
	"crypto/subtle"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"newsdesk-engine/internal/cleanup"
	"newsdesk-engine/internal/events"
)

type CleanupHandler struct {
	DB        *sql.DB
	Publisher events.Publisher
	Secret    string
	Clock     clockwork.Clock
	Logger    zerolog.Logger
}

func (h CleanupHandler) authorized(r *http.Request) bool {
	if h.Secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) == 1
}

func (h CleanupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	res, err := cleanup.Run(r.Context(), h.DB, h.Publisher, h.Clock.Now(), h.Logger)
	if err != nil {
		h.Logger.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("cleanup failed")
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to cleanup expired articles")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"deletedCount": len(res.DeletedIDs),
		"timestamp":    res.At.UTC().Format(time.RFC3339Nano),
	})
}
