package classify

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

func twoTierConfig() domain.TwoTierConfig {
	return domain.TwoTierConfig{
		Enabled:             true,
		CPUFreeze:           80,
		CPUKill:             95,
		FreezeHoldSecs:      5,
		MaxFreezeViolations: 2,
		MaxKillViolations:   3,
	}
}

func TestTwoTierResetsOnEmptySnapshot(t *testing.T) {
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{}, nil)

	w := NewTwoTierWatcher(domain.ClassFirefox, twoTierConfig(), metrics, exec, fc)
	w.Counters = domain.TwoTierCounters{FreezeHits: 1, KillHits: 1}

	require.NoError(t, w.Tick())
	assert.Equal(t, uint32(0), w.Counters.FreezeHits)
	assert.Equal(t, uint32(0), w.Counters.KillHits)
}

func TestTwoTierExclusivityKillResetsFreeze(t *testing.T) {
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{
		{Pid: 1, CPUPercent: 99},
	}, nil)

	w := NewTwoTierWatcher(domain.ClassFirefox, twoTierConfig(), metrics, exec, fc)
	w.Counters.FreezeHits = 1

	require.NoError(t, w.Tick())
	assert.Equal(t, uint32(0), w.Counters.FreezeHits)
	assert.Equal(t, uint32(1), w.Counters.KillHits)
}

func TestTwoTierKillFiresAtMaxAndResetsBoth(t *testing.T) {
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{
		{Pid: 1, CPUPercent: 99},
	}, nil)
	exec.On("Kill", uint32(1)).Return(nil)

	w := NewTwoTierWatcher(domain.ClassFirefox, twoTierConfig(), metrics, exec, fc)
	w.Counters.KillHits = 2 // one short of max=3

	require.NoError(t, w.Tick())
	assert.Equal(t, uint32(0), w.Counters.KillHits)
	assert.Equal(t, uint32(0), w.Counters.FreezeHits)
	assert.Equal(t, uint64(1), w.Kills)
	exec.AssertCalled(t, "Kill", uint32(1))
}

func TestTwoTierFreezeFiresAtMaxThenSleepsAndUnfreezes(t *testing.T) {
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{
		{Pid: 2, CPUPercent: 85},
	}, nil)
	exec.On("Freeze", uint32(2)).Return(nil)
	exec.On("Unfreeze", uint32(2)).Return(nil)

	w := NewTwoTierWatcher(domain.ClassFirefox, twoTierConfig(), metrics, exec, fc)
	w.Counters.FreezeHits = 1 // one short of max=2

	require.NoError(t, w.Tick())
	assert.Equal(t, uint32(0), w.Counters.FreezeHits)
	assert.Equal(t, uint64(1), w.Freezes)
	assert.Equal(t, uint64(5), fc.MonotonicSecs())
	exec.AssertExpectations(t)
}

func TestTwoTierDoesNotFireBelorMaxHits(t *testing.T) {
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	metrics.On("Scan", domain.ClassFirefox).Return([]domain.ProcessSnapshot{
		{Pid: 3, CPUPercent: 99},
	}, nil)

	w := NewTwoTierWatcher(domain.ClassFirefox, twoTierConfig(), metrics, exec, fc)

	require.NoError(t, w.Tick())
	assert.Equal(t, uint32(1), w.Counters.KillHits)
	exec.AssertNotCalled(t, "Kill", mock.Anything)
}

func TestTwoTierDisabledIsNoop(t *testing.T) {
	metrics := new(mocks.ProcessMetricsServiceIface)
	exec := new(mocks.SignalPriorityExecutorIface)
	fc := clock.NewFake(time.Unix(0, 0))

	cfg := twoTierConfig()
	cfg.Enabled = false
	w := NewTwoTierWatcher(domain.ClassFirefox, cfg, metrics, exec, fc)

	require.NoError(t, w.Tick())
	metrics.AssertNotCalled(t, "Scan", mock.Anything)
}
