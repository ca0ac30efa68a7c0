package domain

// CgroupStrategy controls how the Cgroup Manager populates groups at
// startup (spec §4.5, grounded on cgroups/types.rs CgroupStrategy).
type CgroupStrategy int

const (
	CgroupStrategyStatic CgroupStrategy = iota
	CgroupStrategyDynamic
	CgroupStrategyHybrid
)

// ResourceLimits is the quota/ceiling pair applied to one cgroup.
// MemoryMax/MemoryHigh of 0 mean "not set": ApplyLimits does not write
// that file, so a limit written earlier stays in place.
type ResourceLimits struct {
	CPULimitPercent float64
	MemoryMaxBytes  uint64
	MemoryHighBytes uint64
}

// Validate mirrors ResourceLimits::validate in the source: cpu percent
// bounded, high ceiling never above the hard max when both are set.
func (r ResourceLimits) Validate() error {
	if r.CPULimitPercent < 0 || r.CPULimitPercent > 1000 {
		return errInvalidTier("cpu_limit_percent must be in [0,1000]")
	}
	if r.MemoryMaxBytes != 0 && r.MemoryHighBytes != 0 && r.MemoryHighBytes > r.MemoryMaxBytes {
		return errInvalidTier("memory_high must not exceed memory_max")
	}
	return nil
}

// StaticCgroupSpec is one entry of the config-driven static group list:
// a name, the process classes it claims, and the limits to apply to it.
type StaticCgroupSpec struct {
	Name    string
	Classes []ProcessClass
	Limits  ResourceLimits
}

// DynamicCgroupSettings bounds ad-hoc cgroup creation outside the static
// set (spec §4.5, grounded on cgroups/types.rs DynamicCgroupSettings).
type DynamicCgroupSettings struct {
	MaxDynamicCgroups    uint32
	CleanupTimeoutSecs   uint64
	DefaultCPULimit      float64
	DefaultMemoryLimitMB uint64
}

// CgroupConfig is the Configuration Schema's cgroup section (spec §6).
type CgroupConfig struct {
	Enabled                 bool
	RootPath                string
	Strategy                CgroupStrategy
	StaticGroups            []StaticCgroupSpec
	DynamicSettings         DynamicCgroupSettings
	AutoCleanupOnStop       bool
	RestoreProcessesOnStop  bool
}

// CgroupStats is one cgroup's point-in-time resource usage, combining
// cpu.stat and memory.stat/memory.current/memory.peak (spec §4.5).
type CgroupStats struct {
	Name string

	CPUUsageUsec     uint64
	CPUUserUsec      uint64
	CPUSystemUsec    uint64
	CPUNrPeriods     uint64
	CPUNrThrottled   uint64
	CPUThrottledUsec uint64

	MemoryCurrentBytes uint64
	MemoryPeakBytes    uint64
	MemoryAnonBytes    uint64
	MemoryFileBytes    uint64
}

// ThrottlePercentage mirrors CpuStats::throttle_percentage: the share of
// periods this cgroup was throttled in, 0 when no periods were observed.
func (s CgroupStats) ThrottlePercentage() float64 {
	if s.CPUNrPeriods == 0 {
		return 0
	}
	return float64(s.CPUNrThrottled) / float64(s.CPUNrPeriods) * 100
}

// HealthState is the three-valued cgroup subsystem health (spec §4.5,
// grounded on cgroups/types.rs HealthStatus).
type HealthState int

const (
	HealthHealthy HealthState = iota
	HealthDegraded
	HealthFailed
)

// CgroupHealth pairs the health state with the issues that produced it.
type CgroupHealth struct {
	State  HealthState
	Issues []string
}

// CgroupManagerIface is the full lifecycle contract for cgroup-v2
// quota enforcement (spec §4.5).
type CgroupManagerIface interface {
	Initialize() error
	CreateDynamic(name string, limits ResourceLimits) error
	ApplyLimits(name string, limits ResourceLimits) error
	AssignProcess(name string, pid uint32) error
	RemoveCgroup(name string) error
	Stats(name string) (CgroupStats, error)
	HealthCheck() CgroupHealth
	OnServiceStop() error
}
