package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MajotraderLucky/freezr/clock"
	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/mocks"
)

type fakeReader struct {
	mp  domain.MemoryPressure
	err error
}

func (f *fakeReader) Read() (domain.MemoryPressure, error) { return f.mp, f.err }

func baseConfig() domain.PressureConfig {
	return domain.PressureConfig{
		Enabled:            true,
		CheckIntervalSecs:  5,
		SomeWarnThreshold:  10,
		SomeCritThreshold:  20,
		FullWarnThreshold:  5,
		FullCritThreshold:  15,
		WarningAction:      domain.PressureActionLog,
		CriticalAction:     domain.PressureActionKill,
		FreezeHoldSecs:     5,
		NiceLevel:          15,
		NvimRSSThresholdMB: 1024,
	}
}

func TestClassifyCriticalShortCircuitsWarning(t *testing.T) {
	r := NewReactor(baseConfig(), &fakeReader{}, nil, nil, nil)
	sev := r.Classify(domain.MemoryPressure{SomeAvg10: 25, FullAvg10: 0})
	assert.Equal(t, SeverityCritical, sev)
}

func TestClassifyWarningWhenBelowCritical(t *testing.T) {
	r := NewReactor(baseConfig(), &fakeReader{}, nil, nil, nil)
	sev := r.Classify(domain.MemoryPressure{SomeAvg10: 12, FullAvg10: 0})
	assert.Equal(t, SeverityWarning, sev)
}

func TestClassifyNormalBelowAllThresholds(t *testing.T) {
	r := NewReactor(baseConfig(), &fakeReader{}, nil, nil, nil)
	sev := r.Classify(domain.MemoryPressure{SomeAvg10: 1, FullAvg10: 1})
	assert.Equal(t, SeverityNormal, sev)
}

func TestTickSkipsWhenIntervalNotElapsed(t *testing.T) {
	reader := &fakeReader{mp: domain.MemoryPressure{SomeAvg10: 50}}
	fc := clock.NewFake(time.Unix(0, 0))
	// A stamp of 0 means "never checked", so start the clock past 0.
	fc.Advance(time.Second)
	cfg := baseConfig()
	cfg.CriticalAction = domain.PressureActionLog // no metrics/executor wired here
	r := NewReactor(cfg, reader, nil, nil, fc)
	r.State.LastCheckMonotonic = 0

	require.NoError(t, r.Tick())
	assert.Equal(t, uint32(1), r.State.CriticalHits)

	require.NoError(t, r.Tick())
	assert.Equal(t, uint32(1), r.State.CriticalHits, "second tick within interval should be gated")
}

func TestTickNormalResetsHitCounters(t *testing.T) {
	reader := &fakeReader{mp: domain.MemoryPressure{SomeAvg10: 0, FullAvg10: 0}}
	fc := clock.NewFake(time.Unix(0, 0))
	r := NewReactor(baseConfig(), reader, nil, nil, fc)
	r.State.WarningHits = 3
	r.State.CriticalHits = 2

	require.NoError(t, r.Tick())
	assert.Equal(t, uint32(0), r.State.WarningHits)
	assert.Equal(t, uint32(0), r.State.CriticalHits)
}

func TestKillLadderOrderAndNvimRSSGate(t *testing.T) {
	reader := &fakeReader{mp: domain.MemoryPressure{SomeAvg10: 50}}
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassBrave).Return([]domain.ProcessSnapshot{{Pid: 1, RSSBytes: 100 * 1024 * 1024}}, nil)
	metrics.On("Scan", domain.ClassTelegram).Return([]domain.ProcessSnapshot{{Pid: 2, RSSBytes: 200 * 1024 * 1024}}, nil)
	metrics.On("Scan", domain.ClassNvim).Return([]domain.ProcessSnapshot{
		{Pid: 3, RSSBytes: 500 * 1024 * 1024},  // below 1GiB gate
		{Pid: 6, RSSBytes: 1024 * 1024 * 1024}, // exactly at the gate: spared (strict > required)
		{Pid: 4, RSSBytes: 2048 * 1024 * 1024}, // above gate
	}, nil)
	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{{Pid: 5, RSSBytes: 300 * 1024 * 1024}}, nil)

	exec.On("Kill", uint32(1)).Return(nil)
	exec.On("Kill", uint32(2)).Return(nil)
	exec.On("Kill", uint32(4)).Return(nil)
	exec.On("Kill", uint32(5)).Return(nil)

	cfg := baseConfig()
	r := NewReactor(cfg, reader, metrics, exec, fc)

	require.NoError(t, r.Tick())

	exec.AssertNotCalled(t, "Kill", uint32(3))
	exec.AssertNotCalled(t, "Kill", uint32(6))
	exec.AssertCalled(t, "Kill", uint32(4))
	exec.AssertExpectations(t)

	assert.Equal(t, uint64(4), r.KilledCount)
	assert.Equal(t, uint64((100+200+2048+300)*1024*1024), r.BytesFreed)
}

func TestLogActionDoesNotTouchExecutor(t *testing.T) {
	reader := &fakeReader{mp: domain.MemoryPressure{SomeAvg10: 12}}
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	cfg := baseConfig()
	r := NewReactor(cfg, reader, nil, exec, fc)

	require.NoError(t, r.Tick())
	exec.AssertNotCalled(t, "Kill", mock.Anything)
	assert.Equal(t, uint64(1), r.ActionsTaken)
}
