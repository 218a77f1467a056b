package stream

import (
	"errors"
	"net/http"
	"sync"
)

var ErrStreamingUnsupported = errors.New("streaming unsupported")

// ResponseSink writes frames to an SSE response. Broadcasts and heartbeats
// arrive from different goroutines, so writes are serialized. Once a write
// fails or Close is called the sink rejects further writes and Done is closed.
type ResponseSink struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed bool
	done   chan struct{}
	once   sync.Once
}

// canFlush reports whether w, or a writer it wraps, can flush.
func canFlush(w http.ResponseWriter) bool {
	for {
		if _, ok := w.(http.Flusher); ok {
			return true
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return false
		}
		w = u.Unwrap()
	}
}

// NewResponseSink sets the event-stream headers and flushes them. Writers
// that cannot flush, even through middleware wrappers, are rejected.
func NewResponseSink(w http.ResponseWriter) (*ResponseSink, error) {
	if !canFlush(w) {
		return nil, ErrStreamingUnsupported
	}
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return nil, err
	}

	return &ResponseSink{w: w, rc: rc, done: make(chan struct{})}, nil
}

func (s *ResponseSink) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.w.Write(frame); err != nil {
		s.closeLocked()
		return err
	}
	if err := s.rc.Flush(); err != nil {
		s.closeLocked()
		return err
	}
	return nil
}

func (s *ResponseSink) Done() <-chan struct{} {
	return s.done
}

// Close detaches the sink from the response. The handler must call it before
// returning; net/http forbids touching the writer afterwards.
func (s *ResponseSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *ResponseSink) closeLocked() {
	s.closed = true
	s.once.Do(func() { close(s.done) })
}
