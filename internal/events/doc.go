// Package events implements the in-process fan-out of article mutation events
// to live subscriber streams.
//
// A Registry holds the set of connected Sinks. A Broadcaster encodes one wire
// frame per Publish call and writes the same bytes to every registered sink,
// pruning sinks whose write fails. The registry is single-process state; a
// subscriber that connects late never sees earlier events.
//
// Wire format:
//
//	: <comment text>\n\n
//	event: <event name>\ndata: <json payload>\n\n
package events
