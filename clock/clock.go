// Package clock wraps wall/monotonic time behind domain.ClockIface so the
// engine's tick loop and tier state machines can be driven by a fake clock
// in tests instead of real sleeps.
package clock

import (
	"time"

	"github.com/MajotraderLucky/freezr/domain"
)

// System is the production domain.ClockIface, backed by time.Now and a
// process-start-relative monotonic counter.
type System struct {
	start time.Time
}

func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Now() time.Time { return time.Now() }

func (s *System) MonotonicSecs() uint64 {
	return uint64(time.Since(s.start).Seconds())
}

func (s *System) Sleep(d time.Duration) { time.Sleep(d) }

var _ domain.ClockIface = (*System)(nil)
