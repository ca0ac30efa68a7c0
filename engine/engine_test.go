package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MajotraderLucky/freezr/classify"
	"github.com/MajotraderLucky/freezr/clock"
	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/mocks"
	"github.com/MajotraderLucky/freezr/reactor"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	controller := new(mocks.ServiceControllerIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassKesl).Return([]domain.ProcessSnapshot{}, nil)
	metrics.On("Scan", domain.ClassNode).Return([]domain.ProcessSnapshot{}, nil)
	metrics.On("Scan", domain.ClassSnap).Return([]domain.ProcessSnapshot{}, nil)
	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{}, nil)
	metrics.On("Scan", domain.ClassBrave).Return([]domain.ProcessSnapshot{}, nil)
	metrics.On("Scan", domain.ClassTelegram).Return([]domain.ProcessSnapshot{}, nil)

	reader := &stubReader{}

	e := &Engine{
		Kesl:     classify.NewKeslWatcher(classify.KeslConfig{Enabled: true, MaxViolations: 3, UnitName: "kesl"}, metrics, controller),
		Node:     classify.NewNodeWatcher(domain.SingleTierKillConfig{Enabled: true, CPUThreshold: 80, AutoKill: true}, metrics, exec),
		Snap:     classify.NewSingleTierWatcher(domain.ClassSnap, domain.SingleTierActionConfig{Enabled: true, CPUThreshold: 300, Action: domain.ActionNice, MaxViolations: 3}, metrics, exec, fc),
		Firefox:  classify.NewTwoTierWatcher(domain.ClassFirefox, domain.TwoTierConfig{Enabled: true, CPUFreeze: 80, CPUKill: 95, MaxFreezeViolations: 2, MaxKillViolations: 3}, metrics, exec, fc),
		Brave:    classify.NewTwoTierWatcher(domain.ClassBrave, domain.TwoTierConfig{Enabled: true, CPUFreeze: 80, CPUKill: 95, MaxFreezeViolations: 2, MaxKillViolations: 3}, metrics, exec, fc),
		Telegram: classify.NewTwoTierWatcher(domain.ClassTelegram, domain.TwoTierConfig{Enabled: true, CPUFreeze: 80, CPUKill: 95, MaxFreezeViolations: 2, MaxKillViolations: 3}, metrics, exec, fc),
		Pressure: reactor.NewReactor(domain.PressureConfig{Enabled: true, CheckIntervalSecs: 3}, reader, metrics, exec, fc),
		Metrics:  metrics,
	}
	return e
}

type stubReader struct{}

func (s *stubReader) Read() (domain.MemoryPressure, error) {
	return domain.MemoryPressure{}, nil
}

func TestTickIncrementsChecksRun(t *testing.T) {
	e := newTestEngine(t)
	e.Tick()
	assert.Equal(t, uint64(1), e.ChecksRun)
}

func TestTickIsResilientToPassFailure(t *testing.T) {
	e := newTestEngine(t)
	// Make the first pass (KESL) fail; confirm the whole tick still
	// completes and the later passes ran.
	failing := new(mocks.ProcessMetricsServiceIface)
	failing.On("Scan", domain.ClassKesl).Return(nil, errors.New("proc unreadable"))
	e.Kesl = classify.NewKeslWatcher(classify.KeslConfig{Enabled: true, MaxViolations: 3, UnitName: "kesl"}, failing, new(mocks.ServiceControllerIface))

	require.NotPanics(t, func() { e.Tick() })
	assert.Equal(t, uint64(1), e.ChecksRun)
	e.Metrics.(*mocks.ProcessMetricsServiceIface).AssertCalled(t, "Scan", domain.ClassTelegram)
}

func TestSnapshotDerivesStatsWithoutMutatingState(t *testing.T) {
	e := newTestEngine(t)
	e.Tick()

	snap := e.Snapshot()
	assert.Equal(t, uint64(1), snap.ChecksRun)
	assert.Equal(t, e.Kesl.State.CPUViolations, snap.Kesl.CPUViolations)
}

func TestShutdownNoopWithoutCgroupManager(t *testing.T) {
	e := newTestEngine(t)
	assert.NoError(t, e.Shutdown())
}
