package classify

import (
	"github.com/sirupsen/logrus"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// KeslConfig configures the KESL pass: two independent CPU/memory
// violation counters driving a service restart, grounded on
// original_source/.../monitor.rs check_kesl.
type KeslConfig struct {
	Enabled         bool
	CPUThreshold    float64
	MemThresholdMB  uint64
	MaxViolations   uint32
	UnitName        string
}

// KeslWatcher is the KESL pass: unlike every other class it does not act
// on the process directly, it requests a service restart through the
// Service Controller.
type KeslWatcher struct {
	Config domain.ProcessClass
	Cfg    KeslConfig
	State  domain.KeslState

	Metrics    domain.ProcessMetricsServiceIface
	Controller domain.ServiceControllerIface

	Restarts uint64
}

func NewKeslWatcher(cfg KeslConfig, metrics domain.ProcessMetricsServiceIface, controller domain.ServiceControllerIface) *KeslWatcher {
	return &KeslWatcher{Config: domain.ClassKesl, Cfg: cfg, Metrics: metrics, Controller: controller}
}

// Tick mirrors monitor.rs's check_kesl: absence only warns (KESL not
// running is not itself a violation), exceeding either threshold
// increments its counter, either counter reaching max requests a restart.
func (w *KeslWatcher) Tick() error {
	if !w.Cfg.Enabled {
		return nil
	}

	snaps, err := w.Metrics.Scan(domain.ClassKesl)
	if err != nil {
		return errtax.Wrap(errtax.Transport, "classify.KeslWatcher.Tick", err)
	}
	if len(snaps) == 0 {
		logrus.Warn("KESL process not found")
		return nil
	}
	snap := snaps[0]

	if snap.CPUPercent > w.Cfg.CPUThreshold {
		w.State.CPUViolations++
	} else {
		w.State.CPUViolations = 0
	}

	if snap.RSSMegabytes() > w.Cfg.MemThresholdMB {
		w.State.MemoryViolations++
	} else {
		w.State.MemoryViolations = 0
	}

	if w.State.CPUViolations >= w.Cfg.MaxViolations || w.State.MemoryViolations >= w.Cfg.MaxViolations {
		if err := w.Controller.ReloadAndRestart(w.Cfg.UnitName); err != nil {
			logrus.WithError(err).Warn("KESL restart failed, counters retained for next tick")
			return nil
		}
		w.State.CPUViolations = 0
		w.State.MemoryViolations = 0
		w.Restarts++
	}
	return nil
}
