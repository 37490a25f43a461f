package controller

import "time"

// Timer is a pending deferred action.
type Timer interface {
	Stop() bool
}

// Scheduler arms deferred actions.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// ClockScheduler schedules on the runtime timer.
type ClockScheduler struct{}

// AfterFunc calls f in its own goroutine after d.
func (ClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
