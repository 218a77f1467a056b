package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"newsdesk-engine/internal/domain"
	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/store"
)

const maxArticleBody = 1 << 20

type ArticlesHandler struct {
	DB        *sql.DB
	Publisher events.Publisher
	TTL       time.Duration
	Clock     clockwork.Clock
	Logger    zerolog.Logger
}

func (h ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := store.ListArticles(r.Context(), h.DB, store.ListArticlesOpts{
		Now:      h.Clock.Now(),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	})
	if err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to fetch articles")
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeArticleInput(w, r)
	if !ok {
		return
	}

	a, err := domain.NewArticle(in, h.Clock.Now(), h.TTL)
	if err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to create article")
		return
	}
	saved, err := store.InsertArticle(r.Context(), h.DB, a)
	if err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to create article")
		return
	}

	h.publish(r, events.ArticleCreated, saved)
	WriteJSON(w, http.StatusCreated, saved)
}

func (h ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	a, err := store.GetArticle(r.Context(), h.DB, id)
	if err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to get the Article")
		return
	}
	if a.Expired(h.Clock.Now()) {
		WriteError(w, r, http.StatusGone, "expired", "Article expired")
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

func (h ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}
	in, ok := decodeArticleInput(w, r)
	if !ok {
		return
	}

	cur, err := store.GetArticle(r.Context(), h.DB, id)
	if err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to update the Article")
		return
	}
	next, err := cur.Apply(in, h.Clock.Now())
	if err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to update the Article")
		return
	}
	if err := store.UpdateArticle(r.Context(), h.DB, next); err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to update the Article")
		return
	}

	h.publish(r, events.ArticleUpdated, next)
	WriteJSON(w, http.StatusOK, next)
}

func (h ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := articleID(w, r)
	if !ok {
		return
	}

	if err := store.DeleteArticle(r.Context(), h.DB, id); err != nil {
		writeStoreError(w, r, h.Logger, err, "Failed to delete article")
		return
	}

	h.publish(r, events.ArticleDeleted, events.DeletedPayload{ID: id})
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Article deleted successfully"})
}

// publish never fails the request; the mutation is already committed.
func (h ArticlesHandler) publish(r *http.Request, name events.EventName, payload any) {
	if h.Publisher == nil {
		return
	}
	if err := h.Publisher.Publish(name, payload); err != nil {
		h.Logger.Error().
			Err(err).
			Str("request_id", RequestIDFrom(r.Context())).
			Str("event", string(name)).
			Msg("publish failed")
	}
}

func articleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return 0, false
	}
	return id, true
}

func decodeArticleInput(w http.ResponseWriter, r *http.Request) (domain.ArticleInput, bool) {
	var in domain.ArticleInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxArticleBody))
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
			return in, false
		}
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return in, false
	}
	return in, true
}
