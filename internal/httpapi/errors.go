package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"newsdesk-engine/internal/domain"
	"newsdesk-engine/internal/store"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// writeStoreError maps domain and store errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 with fallback as the message.
func writeStoreError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteError(w, r, http.StatusBadRequest, "validation_failed", verr.Message)
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "Article not found")
	default:
		logger.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg(fallback)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", fallback)
	}
}
