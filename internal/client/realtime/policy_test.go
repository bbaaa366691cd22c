package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPolicy_ExponentialCapped(t *testing.T) {
	p := NewPolicy(5, time.Second, 30*time.Second)

	var got []time.Duration
	for attempt := 1; attempt <= 7; attempt++ {
		got = append(got, p.Backoff(attempt))
	}
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}, got)
	assert.Equal(t, 5, p.MaxAttempts)
}

func TestNewPolicy_HugeAttemptStaysCapped(t *testing.T) {
	p := NewPolicy(3, 500*time.Millisecond, 10*time.Second)
	assert.Equal(t, 10*time.Second, p.Backoff(1000))
	assert.Equal(t, 500*time.Millisecond, p.Backoff(0))
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Backoff(1))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "connected", Status{State: Connected}.String())
	assert.Equal(t, "offline", Status{State: Disconnected, Offline: true}.String())
	assert.Equal(t, "connecting", Connecting.String())
}
