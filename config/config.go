// Package config loads and validates the on-disk TOML configuration file
// into a typed tree, one struct per spec.md §6 section. Grounded on the
// source's config.rs (Config/KeslConfig/.../MonitoringConfig plus their
// Default impls and validate()), translated from serde/toml to
// github.com/BurntSushi/toml the way the teacher reaches for a
// third-party decoder rather than hand-rolling one.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// Config is the root of the Configuration Schema (spec §6).
type Config struct {
	Kesl      KeslConfig      `toml:"kesl"`
	Node      NodeConfig      `toml:"node"`
	Snap      SnapConfig      `toml:"snap"`
	Firefox   TwoTierSection  `toml:"firefox"`
	Brave     TwoTierSection  `toml:"brave"`
	Telegram  TwoTierSection  `toml:"telegram"`
	Pressure  PressureSection `toml:"memory_pressure"`
	Logging   LogConfig       `toml:"logging"`
	Monitoring MonitoringConfig `toml:"monitoring"`
	Cgroup    CgroupSection   `toml:"cgroup"`
}

// KeslConfig is the KESL section: cpu_threshold is a warning threshold
// above the systemd CPUQuota=30% hard limit it shadows.
type KeslConfig struct {
	CPUThreshold      float64 `toml:"cpu_threshold"`
	MemoryThresholdMB uint64  `toml:"memory_threshold_mb"`
	MaxViolations     uint32  `toml:"max_violations"`
	ServiceName       string  `toml:"service_name"`
	Enabled           bool    `toml:"enabled"`
}

// NodeConfig is the Node.js section. ConfirmKill only applies in an
// interactive frontend and is carried for config-file compatibility but
// unused by the daemon (spec §3 Non-goals: no interactive confirmation).
type NodeConfig struct {
	CPUThreshold float64 `toml:"cpu_threshold"`
	Enabled      bool    `toml:"enabled"`
	AutoKill     bool    `toml:"auto_kill"`
	ConfirmKill  bool    `toml:"confirm_kill"`
}

// SnapConfig is the Snap/snapd section. Action is one of "freeze",
// "nice", "kill".
type SnapConfig struct {
	CPUThreshold      float64 `toml:"cpu_threshold"`
	Enabled           bool    `toml:"enabled"`
	Action            string  `toml:"action"`
	NiceLevel         int     `toml:"nice_level"`
	FreezeDurationSecs uint64 `toml:"freeze_duration_secs"`
	MaxViolations     uint32  `toml:"max_violations"`
}

// TwoTierSection is the shared shape of the Firefox/Brave/Telegram
// sections: freeze at the lower threshold, escalate to kill at the
// higher one.
type TwoTierSection struct {
	CPUThresholdFreeze float64 `toml:"cpu_threshold_freeze"`
	CPUThresholdKill   float64 `toml:"cpu_threshold_kill"`
	Enabled            bool    `toml:"enabled"`
	FreezeDurationSecs uint64  `toml:"freeze_duration_secs"`
	MaxViolationsFreeze uint32 `toml:"max_violations_freeze"`
	MaxViolationsKill   uint32 `toml:"max_violations_kill"`
}

// PressureSection is the memory_pressure section (spec §4.2/§4.8, not
// present in the original Rust config -- supplemented here since the
// source hardcodes its thresholds rather than exposing them).
type PressureSection struct {
	Enabled            bool    `toml:"enabled"`
	CheckIntervalSecs  uint64  `toml:"check_interval_secs"`
	SomeWarnThreshold  float64 `toml:"some_warn_threshold"`
	SomeCritThreshold  float64 `toml:"some_crit_threshold"`
	FullWarnThreshold  float64 `toml:"full_warn_threshold"`
	FullCritThreshold  float64 `toml:"full_crit_threshold"`
	WarningAction      string  `toml:"warning_action"`
	CriticalAction     string  `toml:"critical_action"`
	FreezeHoldSecs     uint64  `toml:"freeze_hold_secs"`
	NiceLevel          int     `toml:"nice_level"`
	NvimRSSThresholdMB uint64  `toml:"nvim_rss_threshold_mb"`
}

// LogConfig is the logging section.
type LogConfig struct {
	LogDir        string `toml:"log_dir"`
	KeslLog       string `toml:"kesl_log"`
	NodeLog       string `toml:"node_log"`
	ActionsLog    string `toml:"actions_log"`
	MaxFileSizeMB uint64 `toml:"max_file_size_mb"`
	RotateCount   uint32 `toml:"rotate_count"`
}

// MonitoringConfig is the general monitoring section.
type MonitoringConfig struct {
	CheckIntervalSecs      uint64 `toml:"check_interval_secs"`
	MinRestartIntervalSecs uint64 `toml:"min_restart_interval_secs"`
}

// CgroupSection is the cgroup section (spec §4.5, supplemented: the
// source never enforces limits through cgroupfs itself).
type CgroupSection struct {
	Enabled                bool               `toml:"enabled"`
	RootPath               string             `toml:"root_path"`
	Strategy               string             `toml:"strategy"`
	StaticGroups           []StaticGroupEntry `toml:"static_groups"`
	MaxDynamicCgroups      uint32             `toml:"max_dynamic_cgroups"`
	CleanupTimeoutSecs     uint64             `toml:"cleanup_timeout_secs"`
	DefaultCPULimit        float64            `toml:"default_cpu_limit"`
	DefaultMemoryLimitMB   uint64             `toml:"default_memory_limit_mb"`
	AutoCleanupOnStop      bool               `toml:"auto_cleanup_on_stop"`
	RestoreProcessesOnStop bool               `toml:"restore_processes_on_stop"`
}

// StaticGroupEntry is one [[cgroup.static_groups]] TOML table.
type StaticGroupEntry struct {
	Name            string   `toml:"name"`
	Classes         []string `toml:"classes"`
	CPULimitPercent float64  `toml:"cpu_limit_percent"`
	MemoryMaxMB     uint64   `toml:"memory_max_mb"`
	MemoryHighMB    uint64   `toml:"memory_high_mb"`
}

// Default returns the Configuration Schema's built-in defaults, matching
// the source's per-section Default impls exactly (comments there double
// as the contract for these literals).
func Default() Config {
	return Config{
		Kesl: KeslConfig{
			CPUThreshold:      30.0,
			MemoryThresholdMB: 600,
			MaxViolations:     3,
			ServiceName:       "kesl",
			Enabled:           true,
		},
		Node: NodeConfig{
			CPUThreshold: 80.0,
			Enabled:      true,
			AutoKill:     true,
			ConfirmKill:  false,
		},
		Snap: SnapConfig{
			CPUThreshold:       300.0,
			Enabled:            true,
			Action:             "nice",
			NiceLevel:          15,
			FreezeDurationSecs: 5,
			MaxViolations:      3,
		},
		Firefox:  defaultTwoTier(),
		Brave:    defaultTwoTier(),
		Telegram: defaultTwoTier(),
		Pressure: PressureSection{
			Enabled:            true,
			CheckIntervalSecs:  3,
			SomeWarnThreshold:  10,
			SomeCritThreshold:  30,
			FullWarnThreshold:  1,
			FullCritThreshold:  5,
			WarningAction:      "nice",
			CriticalAction:     "kill",
			FreezeHoldSecs:     5,
			NiceLevel:          15,
			NvimRSSThresholdMB: 1024,
		},
		Logging: LogConfig{
			LogDir:        "./logs",
			KeslLog:       "kesl-monitor.log",
			NodeLog:       "node-monitor.log",
			ActionsLog:    "actions.log",
			MaxFileSizeMB: 10,
			RotateCount:   5,
		},
		Monitoring: MonitoringConfig{
			CheckIntervalSecs:      3,
			MinRestartIntervalSecs: 100,
		},
		Cgroup: CgroupSection{
			Enabled:                false,
			RootPath:               "/sys/fs/cgroup/freezr",
			Strategy:               "static",
			MaxDynamicCgroups:      16,
			CleanupTimeoutSecs:     30,
			DefaultCPULimit:        100,
			DefaultMemoryLimitMB:   512,
			AutoCleanupOnStop:      true,
			RestoreProcessesOnStop: true,
		},
	}
}

func defaultTwoTier() TwoTierSection {
	return TwoTierSection{
		CPUThresholdFreeze:  80.0,
		CPUThresholdKill:    95.0,
		Enabled:             true,
		FreezeDurationSecs:  5,
		MaxViolationsFreeze: 2,
		MaxViolationsKill:   3,
	}
}

// Load reads and decodes a TOML file at path, starting from Default() so
// a partial file only overrides the sections it sets, then validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errtax.Wrap(errtax.Parse, "config.Load", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errtax.Wrap(errtax.Validation, "config.Load", err)
	}
	return cfg, nil
}

// Validate enforces every rule in spec.md §6, mirroring Config::validate
// in the source section by section.
func (c Config) Validate() error {
	if err := validatePercent("kesl.cpu_threshold", c.Kesl.CPUThreshold, 0, 100); err != nil {
		return err
	}
	if c.Kesl.MemoryThresholdMB == 0 {
		return fmt.Errorf("kesl.memory_threshold_mb must be > 0")
	}
	if c.Kesl.MaxViolations == 0 {
		return fmt.Errorf("kesl.max_violations must be > 0")
	}

	if err := validatePercent("node.cpu_threshold", c.Node.CPUThreshold, 0, 100); err != nil {
		return err
	}

	if err := validatePercent("snap.cpu_threshold", c.Snap.CPUThreshold, 0, 1000); err != nil {
		return err
	}
	if !isValidAction(c.Snap.Action) {
		return fmt.Errorf("snap.action must be 'freeze', 'nice', or 'kill', got: %s", c.Snap.Action)
	}
	if c.Snap.NiceLevel < 0 || c.Snap.NiceLevel > 19 {
		return fmt.Errorf("snap.nice_level must be 0-19, got: %d", c.Snap.NiceLevel)
	}
	if c.Snap.MaxViolations == 0 {
		return fmt.Errorf("snap.max_violations must be > 0")
	}

	for _, sec := range []struct {
		name string
		t    TwoTierSection
	}{{"firefox", c.Firefox}, {"brave", c.Brave}, {"telegram", c.Telegram}} {
		if err := validateTwoTier(sec.name, sec.t); err != nil {
			return err
		}
	}

	if c.Pressure.Enabled {
		if c.Pressure.SomeCritThreshold <= c.Pressure.SomeWarnThreshold {
			return fmt.Errorf("memory_pressure.some_crit_threshold must exceed some_warn_threshold")
		}
		if c.Pressure.FullCritThreshold <= c.Pressure.FullWarnThreshold {
			return fmt.Errorf("memory_pressure.full_crit_threshold must exceed full_warn_threshold")
		}
		if !isValidAction(c.Pressure.WarningAction) && c.Pressure.WarningAction != "log" {
			return fmt.Errorf("memory_pressure.warning_action must be 'log', 'nice', 'freeze', or 'kill'")
		}
		if !isValidAction(c.Pressure.CriticalAction) && c.Pressure.CriticalAction != "log" {
			return fmt.Errorf("memory_pressure.critical_action must be 'log', 'nice', 'freeze', or 'kill'")
		}
	}

	if c.Monitoring.CheckIntervalSecs == 0 {
		return fmt.Errorf("monitoring.check_interval_secs must be > 0")
	}
	if c.Monitoring.MinRestartIntervalSecs == 0 {
		return fmt.Errorf("monitoring.min_restart_interval_secs must be > 0")
	}

	if c.Cgroup.Enabled {
		switch c.Cgroup.Strategy {
		case "static", "dynamic", "hybrid":
		default:
			return fmt.Errorf("cgroup.strategy must be 'static', 'dynamic', or 'hybrid', got: %s", c.Cgroup.Strategy)
		}
		for _, g := range c.Cgroup.StaticGroups {
			if g.Name == "" {
				return fmt.Errorf("cgroup.static_groups entries must have a name")
			}
			if g.MemoryHighMB != 0 && g.MemoryMaxMB != 0 && g.MemoryHighMB > g.MemoryMaxMB {
				return fmt.Errorf("cgroup.static_groups[%s].memory_high_mb must not exceed memory_max_mb", g.Name)
			}
		}
	}

	return nil
}

func validateTwoTier(name string, t TwoTierSection) error {
	if err := validatePercent(name+".cpu_threshold_freeze", t.CPUThresholdFreeze, 0, 100); err != nil {
		return err
	}
	if err := validatePercent(name+".cpu_threshold_kill", t.CPUThresholdKill, 0, 100); err != nil {
		return err
	}
	if t.CPUThresholdKill <= t.CPUThresholdFreeze {
		return fmt.Errorf("%s.cpu_threshold_kill (%v) must be > cpu_threshold_freeze (%v)", name, t.CPUThresholdKill, t.CPUThresholdFreeze)
	}
	if t.MaxViolationsFreeze == 0 {
		return fmt.Errorf("%s.max_violations_freeze must be > 0", name)
	}
	if t.MaxViolationsKill == 0 {
		return fmt.Errorf("%s.max_violations_kill must be > 0", name)
	}
	return nil
}

func validatePercent(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s must be %v-%v, got: %v", field, lo, hi, v)
	}
	return nil
}

func isValidAction(s string) bool {
	switch s {
	case "freeze", "nice", "kill":
		return true
	default:
		return false
	}
}

func actionKindOf(s string) domain.ActionKind {
	switch s {
	case "freeze":
		return domain.ActionFreeze
	case "kill":
		return domain.ActionKill
	default:
		return domain.ActionNice
	}
}

func pressureActionKindOf(s string) domain.PressureActionKind {
	switch s {
	case "nice":
		return domain.PressureActionNice
	case "freeze":
		return domain.PressureActionFreeze
	case "kill":
		return domain.PressureActionKill
	default:
		return domain.PressureActionLog
	}
}

func cgroupStrategyOf(s string) domain.CgroupStrategy {
	switch s {
	case "dynamic":
		return domain.CgroupStrategyDynamic
	case "hybrid":
		return domain.CgroupStrategyHybrid
	default:
		return domain.CgroupStrategyStatic
	}
}

func classOf(s string) (domain.ProcessClass, bool) {
	switch s {
	case "kesl":
		return domain.ClassKesl, true
	case "node":
		return domain.ClassNode, true
	case "snap":
		return domain.ClassSnap, true
	case "firefox":
		return domain.ClassFirefox, true
	case "brave":
		return domain.ClassBrave, true
	case "telegram":
		return domain.ClassTelegram, true
	case "nvim":
		return domain.ClassNvim, true
	default:
		return 0, false
	}
}

// ToDomainTwoTier converts a TwoTierSection into the domain.TwoTierConfig
// the classify watchers consume.
func (t TwoTierSection) ToDomainTwoTier() domain.TwoTierConfig {
	return domain.TwoTierConfig{
		Enabled:             t.Enabled,
		CPUFreeze:           t.CPUThresholdFreeze,
		CPUKill:             t.CPUThresholdKill,
		FreezeHoldSecs:      t.FreezeDurationSecs,
		MaxFreezeViolations: t.MaxViolationsFreeze,
		MaxKillViolations:   t.MaxViolationsKill,
	}
}

// ToDomainSnap converts SnapConfig into the domain.SingleTierActionConfig
// the Snap watcher consumes.
func (s SnapConfig) ToDomainSnap() domain.SingleTierActionConfig {
	return domain.SingleTierActionConfig{
		Enabled:       s.Enabled,
		CPUThreshold:  s.CPUThreshold,
		Action:        actionKindOf(s.Action),
		NiceLevel:     s.NiceLevel,
		HoldSecs:      s.FreezeDurationSecs,
		MaxViolations: s.MaxViolations,
	}
}

// ToDomainNode converts NodeConfig into the domain.SingleTierKillConfig
// the Node watcher consumes.
func (n NodeConfig) ToDomainNode() domain.SingleTierKillConfig {
	return domain.SingleTierKillConfig{
		Enabled:      n.Enabled,
		CPUThreshold: n.CPUThreshold,
		AutoKill:     n.AutoKill,
	}
}

// ToDomainPressure converts PressureSection into the domain.PressureConfig
// the reactor consumes.
func (p PressureSection) ToDomainPressure() domain.PressureConfig {
	return domain.PressureConfig{
		Enabled:            p.Enabled,
		CheckIntervalSecs:  p.CheckIntervalSecs,
		SomeWarnThreshold:  p.SomeWarnThreshold,
		SomeCritThreshold:  p.SomeCritThreshold,
		FullWarnThreshold:  p.FullWarnThreshold,
		FullCritThreshold:  p.FullCritThreshold,
		WarningAction:      pressureActionKindOf(p.WarningAction),
		CriticalAction:     pressureActionKindOf(p.CriticalAction),
		FreezeHoldSecs:     p.FreezeHoldSecs,
		NiceLevel:          p.NiceLevel,
		NvimRSSThresholdMB: p.NvimRSSThresholdMB,
	}
}

// ToDomainCgroup converts CgroupSection into the domain.CgroupConfig the
// Cgroup Manager consumes. Static group entries naming an unrecognized
// process class are skipped; Validate does not catch this since the
// class list is domain-level, not TOML-level.
func (c CgroupSection) ToDomainCgroup() domain.CgroupConfig {
	groups := make([]domain.StaticCgroupSpec, 0, len(c.StaticGroups))
	for _, g := range c.StaticGroups {
		classes := make([]domain.ProcessClass, 0, len(g.Classes))
		for _, cs := range g.Classes {
			if class, ok := classOf(cs); ok {
				classes = append(classes, class)
			}
		}
		groups = append(groups, domain.StaticCgroupSpec{
			Name:    g.Name,
			Classes: classes,
			Limits: domain.ResourceLimits{
				CPULimitPercent: g.CPULimitPercent,
				MemoryMaxBytes:  g.MemoryMaxMB * 1024 * 1024,
				MemoryHighBytes: g.MemoryHighMB * 1024 * 1024,
			},
		})
	}

	return domain.CgroupConfig{
		Enabled:      c.Enabled,
		RootPath:     c.RootPath,
		Strategy:     cgroupStrategyOf(c.Strategy),
		StaticGroups: groups,
		DynamicSettings: domain.DynamicCgroupSettings{
			MaxDynamicCgroups:    c.MaxDynamicCgroups,
			CleanupTimeoutSecs:   c.CleanupTimeoutSecs,
			DefaultCPULimit:      c.DefaultCPULimit,
			DefaultMemoryLimitMB: c.DefaultMemoryLimitMB,
		},
		AutoCleanupOnStop:      c.AutoCleanupOnStop,
		RestoreProcessesOnStop: c.RestoreProcessesOnStop,
	}
}
