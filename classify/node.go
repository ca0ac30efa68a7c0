package classify

import (
	"github.com/sirupsen/logrus"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// NodeWatcher is the Node pass: no counters, no hysteresis. Every tick a
// matching process exceeds the threshold it is (optionally) killed
// outright, grounded on monitor.rs check_node_processes.
type NodeWatcher struct {
	Cfg domain.SingleTierKillConfig

	Metrics  domain.ProcessMetricsServiceIface
	Executor domain.SignalPriorityExecutorIface

	Kills uint64
}

func NewNodeWatcher(cfg domain.SingleTierKillConfig, metrics domain.ProcessMetricsServiceIface, exec domain.SignalPriorityExecutorIface) *NodeWatcher {
	return &NodeWatcher{Cfg: cfg, Metrics: metrics, Executor: exec}
}

func (w *NodeWatcher) Tick() error {
	if !w.Cfg.Enabled {
		return nil
	}

	snaps, err := w.Metrics.Scan(domain.ClassNode)
	if err != nil {
		return errtax.Wrap(errtax.Transport, "classify.NodeWatcher.Tick", err)
	}

	for _, s := range snaps {
		if s.CPUPercent <= w.Cfg.CPUThreshold || !w.Cfg.AutoKill {
			continue
		}
		if err := w.Executor.Kill(s.Pid); err != nil {
			logrus.WithField("pid", s.Pid).Warnf("node kill failed: %v", err)
			continue
		}
		w.Kills++
	}
	return nil
}
