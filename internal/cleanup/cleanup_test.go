package cleanup

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk-engine/internal/domain"
	"newsdesk-engine/internal/events"
	"newsdesk-engine/internal/store"
)

type published struct {
	name    events.EventName
	payload any
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []published
}

func (p *recordingPublisher) Publish(name events.EventName, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, published{name, payload})
	return nil
}

func ptr(s string) *string { return &s }

func TestRun_DeletesAndPublishesEachID(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "newsdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	insert := func(created time.Time) int64 {
		a, err := domain.NewArticle(domain.ArticleInput{Title: ptr("t"), Content: ptr("c"), Author: ptr("a")}, created, time.Hour)
		require.NoError(t, err)
		saved, err := store.InsertArticle(ctx, db.Pool, a)
		require.NoError(t, err)
		return saved.ID
	}
	old1 := insert(now.Add(-3 * time.Hour))
	old2 := insert(now.Add(-2 * time.Hour))
	insert(now)

	pub := &recordingPublisher{}
	res, err := Run(ctx, db.Pool, pub, now, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []int64{old1, old2}, res.DeletedIDs)
	assert.Equal(t, now, res.At)

	require.Len(t, pub.got, 2)
	assert.Equal(t, events.ArticleDeleted, pub.got[0].name)
	assert.Equal(t, events.DeletedPayload{ID: old1}, pub.got[0].payload)
	assert.Equal(t, events.DeletedPayload{ID: old2}, pub.got[1].payload)
}

func TestRun_NilPublisher(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "newsdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	res, err := Run(context.Background(), db.Pool, nil, time.Now(), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.DeletedIDs)
}
