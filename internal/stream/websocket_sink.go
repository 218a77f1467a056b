package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteDeadline = 5 * time.Second
	wsCloseDeadline = time.Second

	// Subscribers only send control frames; anything bigger is a misbehaving peer.
	wsMaxInbound = 512
)

// WebSocketSink carries the same frames as the SSE stream, one text message
// per frame. A read pump watches for the peer going away.
type WebSocketSink struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
	once   sync.Once
}

// NewWebSocketSink takes ownership of conn and starts its read pump. An
// inbound message over wsMaxInbound bytes ends the stream.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	conn.SetReadLimit(wsMaxInbound)
	s := &WebSocketSink{conn: conn, done: make(chan struct{})}
	go s.readPump()
	return s
}

// readPump discards inbound messages; any read error means the peer is gone.
func (s *WebSocketSink) readPump() {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			s.markDone()
			return
		}
	}
}

func (s *WebSocketSink) Write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.closed = true
		s.markDone()
		return err
	}
	return nil
}

func (s *WebSocketSink) Done() <-chan struct{} {
	return s.done
}

// Close sends a close frame (best effort) and closes the connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream closed")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsCloseDeadline))
	}
	s.markDone()
	return s.conn.Close()
}

func (s *WebSocketSink) markDone() {
	s.once.Do(func() { close(s.done) })
}
