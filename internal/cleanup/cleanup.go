// Package cleanup removes expired articles and tells subscribers about each
// removal. The cron endpoint, the in-process scheduler and the one-shot CLI
// command all go through Run.
package cleanup

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/metrics"
	"newsdesk-engine/internal/store"
)

type Result struct {
	DeletedIDs []int64
	At         time.Time
}

// Run deletes every article that expired before now. pub may be nil when no
// subscribers can exist (the CLI command).
func Run(ctx context.Context, db *sql.DB, pub events.Publisher, now time.Time, logger zerolog.Logger) (Result, error) {
	ids, err := store.DeleteExpired(ctx, db, now)
	if err != nil {
		return Result{}, err
	}
	metrics.ExpiredArticlesDeleted.Add(float64(len(ids)))

	if pub != nil {
		for _, id := range ids {
			if err := pub.Publish(events.ArticleDeleted, events.DeletedPayload{ID: id}); err != nil {
				logger.Error().Err(err).Int64("id", id).Msg("publish article:deleted failed")
			}
		}
	}

	logger.Info().
		Int("deleted", len(ids)).
		Time("at", now).
		Msg("cleanup job completed")
	return Result{DeletedIDs: ids, At: now}, nil
}
