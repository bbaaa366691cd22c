package realtime

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds automatic reconnects. Backoff receives the 1-based number
// of consecutive disconnects so far.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// NewPolicy returns an exponential policy: base, 2*base, 4*base ... capped
// at maxDelay.
func NewPolicy(maxAttempts int, base, maxDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			if attempt > 64 {
				attempt = 64
			}
			b := retry.WithCappedDuration(maxDelay, retry.NewExponential(base))
			var d time.Duration
			for i := 0; i < attempt; i++ {
				d, _ = b.Next()
			}
			return d
		},
	}
}

// DefaultPolicy: 5 attempts, 1s doubling up to 30s.
func DefaultPolicy() Policy {
	return NewPolicy(5, time.Second, 30*time.Second)
}
