// Package chat holds the chat message model and the ordered message list
// shown in the chat room.
package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidMessage = errors.New("invalid chat message")

type Like struct {
	ID     int64  `json:"id"`
	Email  string `json:"email,omitempty"`
	UserID int64  `json:"user_id,omitempty"`
}

// Message is a chat record as delivered by GET /messages and the channel.
// SentByCurrentUser is computed on the client.
type Message struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Name              string    `json:"name"`
	Content           string    `json:"content"`
	Email             string    `json:"email"`
	CreatedAt         time.Time `json:"created_at"`
	Likes             []Like    `json:"likes"`
	SentByCurrentUser bool      `json:"sent_by_current_user"`
}

// envelope is the broadcast shape {"type": "...", "message": {...}}.
type envelope struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

// Decode parses a channel event. Both a bare record and an envelope
// wrapping one are accepted.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && isObject(env.Message) {
		raw = env.Message
	}

	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.ID == 0 {
		return Message{}, fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}
	return m, nil
}

// DecodeList parses a message listing: a bare array, or an object with a
// "messages" or "data" array.
func DecodeList(body []byte) ([]Message, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var msgs []Message
		if err := json.Unmarshal(body, &msgs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		return msgs, nil
	}

	var wrapped struct {
		Messages []Message `json:"messages"`
		Data     []Message `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if wrapped.Messages != nil {
		return wrapped.Messages, nil
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	return []Message{}, nil
}

func isObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
