package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is an HTTP error response. Messages holds the structured
// "errors" of the body, if any.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, strings.Join(e.Messages, "; "))
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// UserMessage returns the first structured API error message of err, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Messages) > 0 {
		return apiErr.Messages[0]
	}
	return fallback
}

// parseErrors reads {"errors": [...]} or Rails' {"errors": {"full_messages": [...]}}.
func parseErrors(body []byte) []string {
	var env struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Errors) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(env.Errors, &list); err == nil {
		return list
	}
	var obj struct {
		FullMessages []string `json:"full_messages"`
	}
	if err := json.Unmarshal(env.Errors, &obj); err == nil {
		return obj.FullMessages
	}
	return nil
}
