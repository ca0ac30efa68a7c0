// Package engine is the Scheduler/Loop: it runs every pass in declared
// order each tick, isolating failures so one pass never aborts the
// others, then derives a read-only Stats Projection. Grounded on spec
// component 4.6 and on the teacher's main-loop idiom of composing
// constructed services and calling a single driving method
// (cmd/sysbox-fs/main.go's app.Action).
package engine

import (
	"github.com/MajotraderLucky/freezr/classify"
	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
	"github.com/MajotraderLucky/freezr/reactor"
)

// Engine owns every class watcher plus the pressure reactor and composes
// them into a single Tick.
type Engine struct {
	Kesl     *classify.KeslWatcher
	Node     *classify.NodeWatcher
	Snap     *classify.SingleTierWatcher
	Firefox  *classify.TwoTierWatcher
	Brave    *classify.TwoTierWatcher
	Telegram *classify.TwoTierWatcher
	Pressure *reactor.Reactor

	CgroupManager domain.CgroupManagerIface
	Metrics       domain.ProcessMetricsServiceIface

	ChecksRun uint64
}

// Tick runs one scheduling round: KESL -> Node -> Snap -> Firefox ->
// Brave -> Telegram -> Pressure, each pass error-isolated (spec §7).
func (e *Engine) Tick() {
	e.ChecksRun++

	errtax.IsolatePass("kesl", e.Kesl.Tick)
	errtax.IsolatePass("node", e.Node.Tick)
	errtax.IsolatePass("snap", e.Snap.Tick)
	errtax.IsolatePass("firefox", e.Firefox.Tick)
	errtax.IsolatePass("brave", e.Brave.Tick)
	errtax.IsolatePass("telegram", e.Telegram.Tick)
	errtax.IsolatePass("pressure", e.Pressure.Tick)
}

// Shutdown tears down the cgroup subsystem if it was enabled. Called
// once, between ticks, on receipt of a termination signal.
func (e *Engine) Shutdown() error {
	if e.CgroupManager == nil {
		return nil
	}
	return e.CgroupManager.OnServiceStop()
}
