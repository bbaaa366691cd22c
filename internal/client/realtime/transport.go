package realtime

import (
	"context"
	"encoding/json"
)

// Handler receives transport events. Calls may come from any goroutine.
type Handler interface {
	Connected()
	Disconnected(err error)
	Received(data json.RawMessage)
}

// Transport is one subscription to a named channel.
type Transport interface {
	// Open starts a new connection and returns once it is underway; events
	// of that connection go to h. A failure to start is returned and not
	// reported to h.
	Open(ctx context.Context, h Handler) error
	// Perform invokes a channel action with data as its payload.
	Perform(ctx context.Context, action string, data any) error
	Close() error
}
