// Package poll provides a bounded poll-until-predicate primitive.
//
// Callers that need "check for X every N ms, give up after M tries" use
// Until with a Clock so tests can drive the loop with a fake clock instead
// of sleeping for real.
package poll

import "time"

// Clock abstracts time.Sleep for testability.
type Clock interface {
	Sleep(d time.Duration)
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

// Sleep blocks for d.
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// Until calls predicate up to attempts times, sleeping interval between
// tries. It returns true as soon as predicate does, or false once the
// attempt budget is spent. The first call happens immediately; no sleep
// follows the final attempt.
func Until(clock Clock, interval time.Duration, attempts int, predicate func() bool) bool {
	for i := 0; i < attempts; i++ {
		if predicate() {
			return true
		}
		if i < attempts-1 {
			clock.Sleep(interval)
		}
	}
	return false
}
