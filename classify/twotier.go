// Package classify holds the per-class violation state machines: a
// generic two-tier freeze/kill watcher (Firefox/Brave/Telegram), a
// generic single-tier action watcher (Snap), and the KESL/Node passes
// whose semantics are distinct enough to stay their own small types.
// Grounded on spec component 4.4 and on the engine-level pass structure
// of original_source/crates/freezr-daemon/src/monitor.rs.
package classify

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// TwoTierWatcher runs the Firefox/Brave/Telegram freeze-then-kill state
// machine for one process class.
type TwoTierWatcher struct {
	Class    domain.ProcessClass
	Config   domain.TwoTierConfig
	Counters domain.TwoTierCounters

	Metrics  domain.ProcessMetricsServiceIface
	Executor domain.SignalPriorityExecutorIface
	Clock    domain.ClockIface

	Freezes uint64
	Kills   uint64
}

func NewTwoTierWatcher(class domain.ProcessClass, cfg domain.TwoTierConfig, metrics domain.ProcessMetricsServiceIface, exec domain.SignalPriorityExecutorIface, clock domain.ClockIface) *TwoTierWatcher {
	return &TwoTierWatcher{Class: class, Config: cfg, Metrics: metrics, Executor: exec, Clock: clock}
}

// Tick runs one pass of the state machine (spec §4.4 "Two-tier").
func (w *TwoTierWatcher) Tick() error {
	if !w.Config.Enabled {
		return nil
	}

	snaps, err := w.Metrics.Scan(w.Class)
	if err != nil {
		return errtax.Wrap(errtax.Transport, "classify.TwoTierWatcher.Tick", err)
	}

	if len(snaps) == 0 {
		w.reset()
		return nil
	}

	var killTier, freezeTier []domain.ProcessSnapshot
	for _, s := range snaps {
		switch {
		case s.CPUPercent > w.Config.CPUKill:
			killTier = append(killTier, s)
		case s.CPUPercent > w.Config.CPUFreeze:
			freezeTier = append(freezeTier, s)
		}
	}

	switch {
	case len(killTier) > 0:
		w.Counters.FreezeHits = 0
		w.Counters.KillHits++
		if w.Counters.KillHits >= w.Config.MaxKillViolations {
			for _, s := range killTier {
				if err := w.Executor.Kill(s.Pid); err != nil {
					logrus.WithField("class", w.Class).WithField("pid", s.Pid).Warnf("kill failed: %v", err)
				} else {
					w.Kills++
				}
			}
			w.reset()
		}
	case len(freezeTier) > 0:
		w.Counters.KillHits = 0
		w.Counters.FreezeHits++
		if w.Counters.FreezeHits >= w.Config.MaxFreezeViolations {
			for _, s := range freezeTier {
				if err := w.Executor.Freeze(s.Pid); err != nil {
					logrus.WithField("class", w.Class).WithField("pid", s.Pid).Warnf("freeze failed: %v", err)
					continue
				}
				w.Clock.Sleep(time.Duration(w.Config.FreezeHoldSecs) * time.Second)
				if err := w.Executor.Unfreeze(s.Pid); err != nil {
					logrus.WithField("class", w.Class).WithField("pid", s.Pid).Warnf("unfreeze failed: %v", err)
				}
				w.Freezes++
			}
			w.Counters.FreezeHits = 0
		}
	default:
		w.reset()
	}
	return nil
}

func (w *TwoTierWatcher) reset() {
	w.Counters.FreezeHits = 0
	w.Counters.KillHits = 0
}
