package events

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeSink records frames and fails on demand.
type fakeSink struct {
	mu      sync.Mutex
	frames  []string
	fail    bool
	onWrite func()
}

func (s *fakeSink) Write(frame []byte) error {
	if s.onWrite != nil {
		s.onWrite()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errBrokenPipe
	}
	s.frames = append(s.frames, string(frame))
	return nil
}

func (s *fakeSink) Frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frames...)
}

func TestEncodeEvent(t *testing.T) {
	frame, err := EncodeEvent(ArticleDeleted, DeletedPayload{ID: 7})
	require.NoError(t, err)
	assert.Equal(t, "event: article:deleted\ndata: {\"id\":7}\n\n", string(frame))
	assert.False(t, IsComment(frame))
}

func TestEncodeEvent_UnencodablePayload(t *testing.T) {
	_, err := EncodeEvent(ArticleCreated, map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "article:created")
}

func TestEncodeComment(t *testing.T) {
	frame := EncodeComment("heartbeat")
	assert.Equal(t, ": heartbeat\n\n", string(frame))
	assert.True(t, IsComment(frame))
}

func TestRegistry_RegisterIsSetLike(t *testing.T) {
	r := NewRegistry()
	a := &fakeSink{}

	r.Register(a)
	r.Register(a)

	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.Snapshot(), 1)
	assert.True(t, r.Contains(a))
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeSink{}, &fakeSink{}
	r.Register(a)
	r.Register(b)

	assert.True(t, r.Unregister(a))
	assert.False(t, r.Unregister(a))
	assert.False(t, r.Unregister(&fakeSink{}))

	assert.False(t, r.Contains(a))
	assert.True(t, r.Contains(b))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_IdentityNotEquality(t *testing.T) {
	r := NewRegistry()
	a, b := &fakeSink{}, &fakeSink{}
	r.Register(a)
	r.Register(b)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SnapshotIsDetached(t *testing.T) {
	r := NewRegistry()
	a := &fakeSink{}
	r.Register(a)

	snap := r.Snapshot()
	r.Unregister(a)
	r.Register(&fakeSink{})

	require.Len(t, snap, 1)
	assert.Same(t, a, snap[0])
}

func TestRegistry_RandomSequencesNeverDuplicate(t *testing.T) {
	r := NewRegistry()
	sinks := []*fakeSink{{}, {}, {}}
	ops := []struct {
		register bool
		idx      int
	}{
		{true, 0}, {true, 1}, {true, 0}, {false, 1}, {false, 1},
		{true, 2}, {true, 1}, {false, 0}, {true, 2}, {false, 2},
	}

	want := map[*fakeSink]bool{}
	for _, op := range ops {
		s := sinks[op.idx]
		if op.register {
			r.Register(s)
			want[s] = true
		} else {
			r.Unregister(s)
			delete(want, s)
		}

		snap := r.Snapshot()
		seen := map[Sink]bool{}
		for _, m := range snap {
			assert.False(t, seen[m], "duplicate sink in snapshot")
			seen[m] = true
		}
		assert.Len(t, snap, len(want))
		for s := range want {
			assert.True(t, seen[s])
		}
	}
}

func TestBroadcaster_PrunesFailingSink(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	a, bad, c := &fakeSink{}, &fakeSink{fail: true}, &fakeSink{}
	r.Register(a)
	r.Register(bad)
	r.Register(c)

	err := b.Publish(ArticleDeleted, map[string]any{"id": 7})
	require.NoError(t, err)

	want := "event: article:deleted\ndata: {\"id\":7}\n\n"
	assert.Equal(t, []string{want}, a.Frames())
	assert.Equal(t, []string{want}, c.Frames())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Contains(a))
	assert.True(t, r.Contains(c))
	assert.False(t, r.Contains(bad))
}

func TestBroadcaster_NoSinks(t *testing.T) {
	b := NewBroadcaster(NewRegistry())
	assert.NoError(t, b.Publish(ArticleCreated, map[string]any{"id": 1}))
	assert.Equal(t, 0, b.Registry().Len())
}

func TestBroadcaster_AllSinksFail(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	for range 5 {
		r.Register(&fakeSink{fail: true})
	}

	assert.NoError(t, b.Publish(ArticleUpdated, map[string]any{"id": 1}))
	assert.Equal(t, 0, r.Len())
}

func TestBroadcaster_FramesArriveInOrder(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	s := &fakeSink{}
	r.Register(s)

	require.NoError(t, b.Publish(ArticleCreated, map[string]any{"id": 1, "title": "x"}))
	require.NoError(t, b.Publish(ArticleUpdated, map[string]any{"id": 1, "title": "y"}))

	assert.Equal(t, []string{
		"event: article:created\ndata: {\"id\":1,\"title\":\"x\"}\n\n",
		"event: article:updated\ndata: {\"id\":1,\"title\":\"y\"}\n\n",
	}, s.Frames())
}

func TestBroadcaster_IdenticalBytesForEverySink(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	sinks := make([]*fakeSink, 10)
	for i := range sinks {
		sinks[i] = &fakeSink{}
		r.Register(sinks[i])
	}

	require.NoError(t, b.Publish(ArticleCreated, map[string]any{"id": 3, "title": "same"}))

	first := sinks[0].Frames()
	require.Len(t, first, 1)
	for _, s := range sinks[1:] {
		assert.Equal(t, first, s.Frames())
	}
}

func TestBroadcaster_UnencodablePayloadWritesNothing(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	s := &fakeSink{}
	r.Register(s)

	err := b.Publish(ArticleCreated, func() {})
	require.Error(t, err)
	assert.Empty(t, s.Frames())
	assert.True(t, r.Contains(s))
}

func TestBroadcaster_SinkAddedMidBroadcastMissesFrame(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	late := &fakeSink{}
	var once sync.Once
	trigger := &fakeSink{onWrite: func() { once.Do(func() { r.Register(late) }) }}
	r.Register(trigger)

	require.NoError(t, b.Publish(ArticleCreated, map[string]any{"id": 1}))

	assert.Len(t, trigger.Frames(), 1)
	assert.Empty(t, late.Frames())
	assert.True(t, r.Contains(late))
}

func TestBroadcaster_UnregisterDuringBroadcast(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	victim := &fakeSink{}
	remover := &fakeSink{onWrite: func() { r.Unregister(victim) }}
	r.Register(remover)
	r.Register(victim)

	assert.NotPanics(t, func() {
		require.NoError(t, b.Publish(ArticleDeleted, DeletedPayload{ID: 1}))
	})
	assert.False(t, r.Contains(victim))
	assert.True(t, r.Contains(remover))
}

func TestBroadcaster_ConcurrentMembershipChanges(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	stable := &fakeSink{}
	r.Register(stable)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				s := &fakeSink{}
				r.Register(s)
				r.Unregister(s)
				r.Unregister(s)
			}
		}()
	}
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.NoError(t, b.Publish(ArticleUpdated, DeletedPayload{ID: int64(i)}))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, r.Len())
	assert.Len(t, stable.Frames(), 200)
}

func TestDefault_ReturnsSameInstance(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.NotNil(t, Default().Registry())
}
