package realtime

import (
	"time"

	"github.com/google/uuid"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// OutboundMessage is a chat message produced by this client. ID is local
// only; the channel receives content, email and timestamp.
type OutboundMessage struct {
	ID          uuid.UUID `json:"-"`
	Content     string    `json:"content"`
	SenderEmail string    `json:"email"`
	Timestamp   int64     `json:"timestamp"`
}

// NewOutboundMessage stamps content with a fresh id and now in Unix
// milliseconds.
func NewOutboundMessage(content, senderEmail string, now time.Time) OutboundMessage {
	return OutboundMessage{
		ID:          uuid.New(),
		Content:     content,
		SenderEmail: senderEmail,
		Timestamp:   now.UnixMilli(),
	}
}

// Status is a snapshot of the manager.
type Status struct {
	State      State
	RetryCount int
	Pending    int
	Offline    bool
}

func (s Status) String() string {
	if s.Offline {
		return "offline"
	}
	return s.State.String()
}
