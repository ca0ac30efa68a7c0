// Package reactor is the Memory-Pressure Reactor: it tick-gates PSI
// reads, classifies Critical/Warning/Normal, and executes the configured
// remediation, including the fixed victim ladder for Kill. Grounded on
// spec component 4.5 and on
// original_source/crates/freezr-core/src/memory_pressure.rs's
// is_warning/is_critical semantics.
package reactor

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// Severity is the reactor's own tick-level classification, distinct from
// domain.PressureStatus (which is a display-only bucket of one reading).
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

// Reactor runs the tick-gated pressure pass.
type Reactor struct {
	Cfg   domain.PressureConfig
	State domain.PressureState

	Reader   domain.PressureReaderIface
	Metrics  domain.ProcessMetricsServiceIface
	Executor domain.SignalPriorityExecutorIface
	Clock    domain.ClockIface

	ActionsTaken uint64
	LastReading  domain.MemoryPressure

	// KilledCount and BytesFreed are cumulative totals across every Kill
	// action this reactor has executed (spec §4.5: the Kill action
	// reports {killed_count, bytes_freed}).
	KilledCount uint64
	BytesFreed  uint64
}

func NewReactor(cfg domain.PressureConfig, reader domain.PressureReaderIface, metrics domain.ProcessMetricsServiceIface, exec domain.SignalPriorityExecutorIface, clock domain.ClockIface) *Reactor {
	return &Reactor{Cfg: cfg, Reader: reader, Metrics: metrics, Executor: exec, Clock: clock}
}

// Classify implements spec §4.5's first-matching-tier-wins rule: Critical
// short-circuits Warning (preserved Open Question from memory_pressure.rs,
// whose is_warning/is_critical bodies were identical in the source; the
// spec resolves the ambiguity by making Critical win outright).
func (r *Reactor) Classify(mp domain.MemoryPressure) Severity {
	if mp.SomeAvg10 >= r.Cfg.SomeCritThreshold || mp.FullAvg10 >= r.Cfg.FullCritThreshold {
		return SeverityCritical
	}
	if mp.SomeAvg10 >= r.Cfg.SomeWarnThreshold || mp.FullAvg10 >= r.Cfg.FullWarnThreshold {
		return SeverityWarning
	}
	return SeverityNormal
}

// Tick runs one pass of the reactor, gated by the configured check
// interval.
func (r *Reactor) Tick() error {
	if !r.Cfg.Enabled {
		return nil
	}
	if r.State.LastCheckMonotonic != 0 && r.Clock.MonotonicSecs()-r.State.LastCheckMonotonic < r.Cfg.CheckIntervalSecs {
		return nil
	}

	mp, err := r.Reader.Read()
	if err != nil {
		return errtax.Wrap(errtax.Transport, "reactor.Tick", err)
	}
	r.LastReading = mp

	switch r.Classify(mp) {
	case SeverityCritical:
		r.State.CriticalHits++
		r.act(r.Cfg.CriticalAction)
	case SeverityWarning:
		r.State.WarningHits++
		r.act(r.Cfg.WarningAction)
	default:
		r.State.WarningHits = 0
		r.State.CriticalHits = 0
	}

	r.State.LastCheckMonotonic = r.Clock.MonotonicSecs()
	return nil
}

var victimOrder = []domain.ProcessClass{domain.ClassBrave, domain.ClassTelegram, domain.ClassNvim, domain.ClassFirefox}

func (r *Reactor) act(action domain.PressureActionKind) {
	switch action {
	case domain.PressureActionLog:
		logrus.WithField("some_avg10", r.LastReading.SomeAvg10).WithField("full_avg10", r.LastReading.FullAvg10).Warn("memory pressure event")
	case domain.PressureActionNice:
		r.forEachBrowserClass(func(s domain.ProcessSnapshot) {
			if err := r.Executor.Renice(s.Pid, r.Cfg.NiceLevel); err != nil {
				logrus.WithField("pid", s.Pid).Warnf("pressure renice failed: %v", err)
			}
		})
	case domain.PressureActionFreeze:
		r.forEachBrowserClass(func(s domain.ProcessSnapshot) {
			if err := r.Executor.Freeze(s.Pid); err != nil {
				logrus.WithField("pid", s.Pid).Warnf("pressure freeze failed: %v", err)
			}
		})
		r.Clock.Sleep(time.Duration(r.Cfg.FreezeHoldSecs) * time.Second)
		r.forEachBrowserClass(func(s domain.ProcessSnapshot) {
			if err := r.Executor.Unfreeze(s.Pid); err != nil {
				logrus.WithField("pid", s.Pid).Warnf("pressure unfreeze failed: %v", err)
			}
		})
	case domain.PressureActionKill:
		count, bytesFreed := r.killLadder()
		r.KilledCount += count
		r.BytesFreed += bytesFreed
		logrus.WithField("killed_count", count).WithField("bytes_freed", bytesFreed).Warn("pressure kill ladder executed")
	}
	r.ActionsTaken++
}

func (r *Reactor) forEachBrowserClass(fn func(domain.ProcessSnapshot)) {
	for _, class := range []domain.ProcessClass{domain.ClassFirefox, domain.ClassBrave, domain.ClassTelegram} {
		snaps, err := r.Metrics.Scan(class)
		if err != nil {
			logrus.WithField("class", class).Warnf("pressure scan failed: %v", err)
			continue
		}
		for _, s := range snaps {
			fn(s)
		}
	}
}

// killLadder kills every matching process, tier by tier, in the fixed
// priority order Brave -> Telegram -> Nvim(rss>1GiB) -> Firefox, and
// reports how many processes were actually killed and how many bytes of
// RSS that freed (spec §4.5).
func (r *Reactor) killLadder() (killedCount uint64, bytesFreed uint64) {
	for _, class := range victimOrder {
		snaps, err := r.Metrics.Scan(class)
		if err != nil {
			logrus.WithField("class", class).Warnf("pressure scan failed: %v", err)
			continue
		}
		for _, s := range snaps {
			if class == domain.ClassNvim && s.RSSMegabytes() <= r.Cfg.NvimRSSThresholdMB {
				continue
			}
			if err := r.Executor.Kill(s.Pid); err != nil {
				logrus.WithField("pid", s.Pid).Warnf("pressure kill failed: %v", err)
				continue
			}
			killedCount++
			bytesFreed += s.RSSBytes
		}
	}
	return killedCount, bytesFreed
}
