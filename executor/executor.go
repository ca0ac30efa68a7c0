// Package executor is the Signal/Priority Executor: the only code in the
// daemon allowed to send signals to, or change the priority of, a host
// process. Grounded on
// original_source/crates/freezr-core/src/executor.rs ProcessExecutor, and
// on the teacher's direct-syscall style (golang.org/x/sys/unix used
// throughout process/process.go).
package executor

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// Signal is the domain.SignalPriorityExecutorIface implementation.
type Signal struct {
	// sleep is overridden in tests so Kill's 2s/500ms waits don't slow
	// the suite down.
	sleep func(time.Duration)
}

func NewSignal() *Signal {
	return &Signal{sleep: time.Sleep}
}

// SetSleepFunc overrides the wait function Kill uses between signal
// escalations; tests substitute a no-op so the 2s/500ms waits don't slow
// the suite down.
func (s *Signal) SetSleepFunc(fn func(time.Duration)) {
	s.sleep = fn
}

// Exists probes liveness with kill(pid, 0): ESRCH means gone, EPERM means
// alive but owned by another user, any other error is unexpected.
func (s *Signal) Exists(pid uint32) (bool, error) {
	err := unix.Kill(int(pid), 0)
	if err == nil {
		return true, nil
	}
	if err == unix.ESRCH {
		return false, nil
	}
	if err == unix.EPERM {
		return true, nil
	}
	return false, errtax.Wrap(errtax.Transport, "executor.Exists", err)
}

// Kill escalates SIGTERM -> (2s) -> SIGKILL -> (500ms) -> give up.
func (s *Signal) Kill(pid uint32) error {
	exists, err := s.Exists(pid)
	if err != nil {
		return err
	}
	if !exists {
		return errtax.New(errtax.NotFound, "executor.Kill", "process does not exist")
	}

	if err := unix.Kill(int(pid), unix.SIGTERM); err != nil {
		return errtax.Wrap(errtax.Transport, "executor.Kill", err)
	}
	s.sleep(2 * time.Second)

	exists, err = s.Exists(pid)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := unix.Kill(int(pid), unix.SIGKILL); err != nil {
		return errtax.Wrap(errtax.Transport, "executor.Kill", err)
	}
	s.sleep(500 * time.Millisecond)

	exists, err = s.Exists(pid)
	if err != nil {
		return err
	}
	if exists {
		return errtax.New(errtax.Fatal, "executor.Kill", "process still alive even with SIGKILL")
	}
	return nil
}

func (s *Signal) Freeze(pid uint32) error {
	return s.requireExistsThenSignal(pid, unix.SIGSTOP, "executor.Freeze")
}

func (s *Signal) Unfreeze(pid uint32) error {
	return s.requireExistsThenSignal(pid, unix.SIGCONT, "executor.Unfreeze")
}

func (s *Signal) requireExistsThenSignal(pid uint32, sig unix.Signal, op string) error {
	exists, err := s.Exists(pid)
	if err != nil {
		return err
	}
	if !exists {
		return errtax.New(errtax.NotFound, op, "process does not exist")
	}
	if err := unix.Kill(int(pid), sig); err != nil {
		return errtax.Wrap(errtax.Transport, op, err)
	}
	return nil
}

// Renice validates the nice level and applies it via the setpriority
// syscall directly, rather than shelling out to `renice` (spec §9 design
// note).
func (s *Signal) Renice(pid uint32, niceLevel int) error {
	if niceLevel < -20 || niceLevel > 19 {
		return errtax.New(errtax.Validation, "executor.Renice", "nice level must be in [-20,19]")
	}
	exists, err := s.Exists(pid)
	if err != nil {
		return err
	}
	if !exists {
		return errtax.New(errtax.NotFound, "executor.Renice", "process does not exist")
	}
	if err := unix.Setpriority(unix.PRIO_PROCESS, int(pid), niceLevel); err != nil {
		return errtax.Wrap(errtax.Transport, "executor.Renice", err)
	}
	return nil
}

var _ domain.SignalPriorityExecutorIface = (*Signal)(nil)
