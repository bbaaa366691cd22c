// Package realtime keeps one subscription to the chat channel alive.
//
// Manager is the state machine: Disconnected -> Connecting -> Connected and
// back. A disconnect schedules a reconnect after Policy.Backoff; after
// Policy.MaxAttempts consecutive disconnects the manager stays Disconnected
// and reports Offline until Connect is called again. Messages sent while
// not connected wait in an outbox that is drained in order on the next
// successful connection.
//
// Cable is the Transport speaking the ActionCable JSON protocol over a
// gorilla/websocket connection.
package realtime
