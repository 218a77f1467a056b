package events

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventName identifies the kind of event carried by a frame.
type EventName string

const (
	ArticleCreated EventName = "article:created"
	ArticleUpdated EventName = "article:updated"
	ArticleDeleted EventName = "article:deleted"
)

// DeletedPayload is the payload of ArticleDeleted.
type DeletedPayload struct {
	ID int64 `json:"id"`
}

// Sink is one subscriber's output. Write must return an error once the
// underlying stream is broken. Implementations must be comparable (pointer
// types): the registry identifies sinks by reference.
type Sink interface {
	Write(frame []byte) error
}

// Publisher is what mutation handlers depend on.
type Publisher interface {
	Publish(name EventName, payload any) error
}

// EncodeEvent builds an event frame. The payload is encoded once with
// encoding/json; it is opaque to this package.
func EncodeEvent(name EventName, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	var buf bytes.Buffer
	buf.Grow(len("event: \ndata: \n\n") + len(name) + len(data))
	buf.WriteString("event: ")
	buf.WriteString(string(name))
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// EncodeComment builds a comment frame. Conforming consumers ignore it.
func EncodeComment(text string) []byte {
	return []byte(": " + text + "\n\n")
}

// IsComment reports whether frame is a comment frame.
func IsComment(frame []byte) bool {
	return len(frame) > 0 && frame[0] == ':'
}
