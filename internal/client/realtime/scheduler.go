package realtime

import "time"

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Tests substitute a virtual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
