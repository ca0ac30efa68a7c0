package domain

import "time"

// ClockIface abstracts wall/monotonic time so the engine loop and tier
// state machines are deterministically testable (spec §5 concurrency
// note: single-threaded cooperative scheduling, no locking needed).
type ClockIface interface {
	Now() time.Time
	MonotonicSecs() uint64
	Sleep(d time.Duration)
}
