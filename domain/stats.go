package domain

// StatsSnapshot is the read-only Stats Projection (spec §4.8): a pure
// derived view of engine state, recomputed every tick and never mutated
// in place. Structurally grounded on the source's stats.rs MonitorStats
// dashboard, renamed here to avoid confusion with the per-class counter
// types above.
type StatsSnapshot struct {
	Kesl     KeslStats     `json:"kesl"`
	Node     NodeStats     `json:"node"`
	Snap     SnapStats     `json:"snap"`
	Firefox  BrowserStats  `json:"firefox"`
	Brave    BrowserStats  `json:"brave"`
	Telegram BrowserStats  `json:"telegram"`
	Pressure PressureStats `json:"memory_pressure"`
	System   SystemHealth  `json:"system"`
	Log      LogStats      `json:"log"`

	TotalRestarts uint64 `json:"total_restarts"`
	TotalKills    uint64 `json:"total_kills"`
	TotalFreezes  uint64 `json:"total_freezes"`
	TotalActions  uint64 `json:"total_actions"`
	ChecksRun     uint64 `json:"checks_run"`
	LastCheckUnix int64  `json:"last_check_unix"`
}

// KeslStats mirrors the source's ProcessStats as applied to KESL.
type KeslStats struct {
	Running          bool    `json:"running"`
	Pid              uint32  `json:"pid"`
	CPUPercent       float64 `json:"cpu_percent"`
	MemoryMB         uint64  `json:"memory_mb"`
	CPUViolations    uint32  `json:"cpu_violations"`
	MemoryViolations uint32  `json:"memory_violations"`
	Restarts         uint64  `json:"restarts"`
}

// NodeStats mirrors NodeStats: no hysteresis counters, just a tally of
// kills performed this run.
type NodeStats struct {
	ProcessCount int    `json:"process_count"`
	KillsApplied uint64 `json:"kills_applied"`
}

// SnapStats mirrors SnapStats: one counter, one configured action.
type SnapStats struct {
	ProcessCount int        `json:"process_count"`
	Hits         uint32     `json:"hits"`
	ActionsTaken uint64     `json:"actions_taken"`
	LastAction   ActionKind `json:"last_action"`
}

// BrowserStats mirrors BrowserStats, shared by Firefox/Brave/Telegram.
type BrowserStats struct {
	ProcessCount int    `json:"process_count"`
	FreezeHits   uint32 `json:"freeze_hits"`
	KillHits     uint32 `json:"kill_hits"`
	Freezes      uint64 `json:"freezes"`
	Kills        uint64 `json:"kills"`
}

// PressureStats mirrors MemoryPressureStats.
type PressureStats struct {
	Latest       MemoryPressure `json:"latest"`
	Status       PressureStatus `json:"status"`
	WarningHits  uint32         `json:"warning_hits"`
	CriticalHits uint32         `json:"critical_hits"`
	ActionsTaken uint64         `json:"actions_taken"`
	KilledCount  uint64         `json:"killed_count"`
	BytesFreed   uint64         `json:"bytes_freed"`
}

// SystemHealth mirrors SystemHealth: the gopsutil-backed load/mem view.
type SystemHealth struct {
	Load1             float64 `json:"load1"`
	Load5             float64 `json:"load5"`
	Load15            float64 `json:"load15"`
	MemTotalBytes     uint64  `json:"mem_total_bytes"`
	MemAvailableBytes uint64  `json:"mem_available_bytes"`
	MemUsedPercent    float64 `json:"mem_used_percent"`
}

// LogStats mirrors LogStats: rotation bookkeeping exposed for visibility.
type LogStats struct {
	LogDir        string `json:"log_dir"`
	MaxFileSizeMB uint64 `json:"max_file_size_mb"`
	RotateCount   uint32 `json:"rotate_count"`
}
