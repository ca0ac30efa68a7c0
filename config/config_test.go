package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MajotraderLucky/freezr/domain"
)

func TestDefaultPassesValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadPartialFileOverridesOnlySetSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freezr.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[kesl]
cpu_threshold = 45.0
memory_threshold_mb = 600
max_violations = 3
service_name = "kesl"
enabled = true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45.0, cfg.Kesl.CPUThreshold)
	// Untouched sections keep their defaults.
	assert.Equal(t, 80.0, cfg.Node.CPUThreshold)
	assert.Equal(t, "nice", cfg.Snap.Action)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freezr.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freezr.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[snap]
cpu_threshold = 300.0
enabled = true
action = "explode"
nice_level = 15
freeze_duration_secs = 5
max_violations = 3
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateKeslCPUThresholdRange(t *testing.T) {
	cfg := Default()
	cfg.Kesl.CPUThreshold = 150
	assert.Error(t, cfg.Validate())
}

func TestValidateTwoTierRequiresKillAboveFreeze(t *testing.T) {
	cfg := Default()
	cfg.Firefox.CPUThresholdKill = cfg.Firefox.CPUThresholdFreeze
	assert.Error(t, cfg.Validate())
}

func TestValidateSnapRejectsUnknownAction(t *testing.T) {
	cfg := Default()
	cfg.Snap.Action = "nuke"
	assert.Error(t, cfg.Validate())
}

func TestValidateSnapRejectsOutOfRangeNiceLevel(t *testing.T) {
	cfg := Default()
	cfg.Snap.NiceLevel = 25
	assert.Error(t, cfg.Validate())
}

func TestValidatePressureRequiresCritAboveWarn(t *testing.T) {
	cfg := Default()
	cfg.Pressure.SomeCritThreshold = cfg.Pressure.SomeWarnThreshold
	assert.Error(t, cfg.Validate())
}

func TestValidateCgroupRejectsUnknownStrategy(t *testing.T) {
	cfg := Default()
	cfg.Cgroup.Enabled = true
	cfg.Cgroup.Strategy = "sideways"
	assert.Error(t, cfg.Validate())
}

func TestValidateCgroupRejectsMemoryHighAboveMax(t *testing.T) {
	cfg := Default()
	cfg.Cgroup.Enabled = true
	cfg.Cgroup.Strategy = "static"
	cfg.Cgroup.StaticGroups = []StaticGroupEntry{
		{Name: "browsers", Classes: []string{"firefox"}, MemoryMaxMB: 512, MemoryHighMB: 1024},
	}
	assert.Error(t, cfg.Validate())
}

func TestToDomainTwoTierConversion(t *testing.T) {
	d := Default().Firefox.ToDomainTwoTier()
	assert.Equal(t, 80.0, d.CPUFreeze)
	assert.Equal(t, 95.0, d.CPUKill)
	assert.Equal(t, uint32(2), d.MaxFreezeViolations)
	assert.Equal(t, uint32(3), d.MaxKillViolations)
}

func TestToDomainSnapActionConversion(t *testing.T) {
	s := Default().Snap
	s.Action = "kill"
	d := s.ToDomainSnap()
	assert.Equal(t, domain.ActionKill, d.Action)
}

func TestToDomainPressureActionConversion(t *testing.T) {
	p := Default().Pressure
	p.WarningAction = "nice"
	p.CriticalAction = "kill"
	d := p.ToDomainPressure()
	assert.Equal(t, domain.PressureActionNice, d.WarningAction)
	assert.Equal(t, domain.PressureActionKill, d.CriticalAction)
}

func TestToDomainCgroupSkipsUnknownClassesAndConvertsMBToBytes(t *testing.T) {
	c := CgroupSection{
		Enabled:  true,
		Strategy: "static",
		StaticGroups: []StaticGroupEntry{
			{Name: "browsers", Classes: []string{"firefox", "made_up"}, CPULimitPercent: 150, MemoryMaxMB: 512},
		},
	}
	d := c.ToDomainCgroup()
	require.Len(t, d.StaticGroups, 1)
	assert.Equal(t, []domain.ProcessClass{domain.ClassFirefox}, d.StaticGroups[0].Classes)
	assert.Equal(t, uint64(512*1024*1024), d.StaticGroups[0].Limits.MemoryMaxBytes)
}
