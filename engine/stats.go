package engine

import (
	"time"

	"github.com/MajotraderLucky/freezr/classify"
	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/metrics"
)

// Snapshot derives a read-only domain.StatsSnapshot from current engine
// state. It is a pure function: no mutation, safe to call every tick for
// export. Structurally grounded on
// original_source/crates/freezr-daemon/src/stats.rs MonitorStats.
func (e *Engine) Snapshot() domain.StatsSnapshot {
	snap := domain.StatsSnapshot{
		Kesl: domain.KeslStats{
			CPUViolations:    e.Kesl.State.CPUViolations,
			MemoryViolations: e.Kesl.State.MemoryViolations,
			Restarts:         e.Kesl.Restarts,
		},
		Node: domain.NodeStats{
			KillsApplied: e.Node.Kills,
		},
		Snap: domain.SnapStats{
			Hits:         e.Snap.Counters.Hits,
			ActionsTaken: e.Snap.ActionsTaken,
			LastAction:   e.Snap.Config.Action,
		},
		Firefox:  browserStatsOf(e.Firefox),
		Brave:    browserStatsOf(e.Brave),
		Telegram: browserStatsOf(e.Telegram),
		Pressure: domain.PressureStats{
			Latest:       e.Pressure.LastReading,
			Status:       e.Pressure.LastReading.Status(),
			WarningHits:  e.Pressure.State.WarningHits,
			CriticalHits: e.Pressure.State.CriticalHits,
			ActionsTaken: e.Pressure.ActionsTaken,
			KilledCount:  e.Pressure.KilledCount,
			BytesFreed:   e.Pressure.BytesFreed,
		},
		ChecksRun:     e.ChecksRun,
		LastCheckUnix: time.Now().Unix(),
	}

	var snapKills uint64
	if e.Snap.Config.Action == domain.ActionKill {
		snapKills = e.Snap.ActionsTaken
	}

	snap.TotalRestarts = e.Kesl.Restarts
	snap.TotalKills = e.Node.Kills + snapKills + snap.Firefox.Kills + snap.Brave.Kills + snap.Telegram.Kills
	snap.TotalFreezes = snap.Firefox.Freezes + snap.Brave.Freezes + snap.Telegram.Freezes
	snap.TotalActions = snap.Snap.ActionsTaken + snap.Pressure.ActionsTaken

	if health, err := metrics.SystemHealth(); err == nil {
		snap.System = health
	}

	return snap
}

func browserStatsOf(w *classify.TwoTierWatcher) domain.BrowserStats {
	return domain.BrowserStats{
		FreezeHits: w.Counters.FreezeHits,
		KillHits:   w.Counters.KillHits,
		Freezes:    w.Freezes,
		Kills:      w.Kills,
	}
}
