package classify

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// SingleTierWatcher runs the Snap single-threshold/single-action state
// machine (spec §4.4 "Single-tier Action").
type SingleTierWatcher struct {
	Class    domain.ProcessClass
	Config   domain.SingleTierActionConfig
	Counters domain.SingleTierCounters

	Metrics  domain.ProcessMetricsServiceIface
	Executor domain.SignalPriorityExecutorIface
	Clock    domain.ClockIface

	ActionsTaken uint64
}

func NewSingleTierWatcher(class domain.ProcessClass, cfg domain.SingleTierActionConfig, metrics domain.ProcessMetricsServiceIface, exec domain.SignalPriorityExecutorIface, clock domain.ClockIface) *SingleTierWatcher {
	return &SingleTierWatcher{Class: class, Config: cfg, Metrics: metrics, Executor: exec, Clock: clock}
}

func (w *SingleTierWatcher) Tick() error {
	if !w.Config.Enabled {
		return nil
	}

	snaps, err := w.Metrics.Scan(w.Class)
	if err != nil {
		return errtax.Wrap(errtax.Transport, "classify.SingleTierWatcher.Tick", err)
	}

	var hit []domain.ProcessSnapshot
	for _, s := range snaps {
		if s.CPUPercent > w.Config.CPUThreshold {
			hit = append(hit, s)
		}
	}

	if len(hit) == 0 {
		w.Counters.Hits = 0
		return nil
	}

	w.Counters.Hits++
	if w.Counters.Hits < w.Config.MaxViolations {
		return nil
	}

	for _, s := range hit {
		w.applyAction(s.Pid)
	}
	w.Counters.Hits = 0
	return nil
}

func (w *SingleTierWatcher) applyAction(pid uint32) {
	switch w.Config.Action {
	case domain.ActionNice:
		if err := w.Executor.Renice(pid, w.Config.NiceLevel); err != nil {
			logrus.WithField("class", w.Class).WithField("pid", pid).Warnf("renice failed: %v", err)
			return
		}
	case domain.ActionFreeze:
		if err := w.Executor.Freeze(pid); err != nil {
			logrus.WithField("class", w.Class).WithField("pid", pid).Warnf("freeze failed: %v", err)
			return
		}
		w.Clock.Sleep(time.Duration(w.Config.HoldSecs) * time.Second)
		if err := w.Executor.Unfreeze(pid); err != nil {
			logrus.WithField("class", w.Class).WithField("pid", pid).Warnf("unfreeze failed: %v", err)
		}
	case domain.ActionKill:
		if err := w.Executor.Kill(pid); err != nil {
			logrus.WithField("class", w.Class).WithField("pid", pid).Warnf("kill failed: %v", err)
			return
		}
	}
	w.ActionsTaken++
}
