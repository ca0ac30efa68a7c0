package domain

// ProcessClass tags a watched group of host processes. Each class owns a
// cmdline matcher (see metrics.Scan) and exactly one TierConfig.
type ProcessClass string

const (
	ClassKesl     ProcessClass = "kesl"
	ClassNode     ProcessClass = "node"
	ClassSnap     ProcessClass = "snap"
	ClassFirefox  ProcessClass = "firefox"
	ClassBrave    ProcessClass = "brave"
	ClassTelegram ProcessClass = "telegram"
	ClassNvim     ProcessClass = "nvim"
)

// ProcessSnapshot is a read-only reading of one process at a single
// instant. It is transient: discarded after the tick that produced it.
type ProcessSnapshot struct {
	Pid        uint32
	CPUPercent float64
	RSSBytes   uint64
	Cmdline    string
}

// RSSMegabytes is the convenience MB view used throughout stats and
// threshold comparisons (integer division, matching the source's
// memory_kb / 1024 truncation).
func (p ProcessSnapshot) RSSMegabytes() uint64 {
	return p.RSSBytes / (1024 * 1024)
}

// ProcessMetricsServiceIface is the Process Metrics Adapter contract
// (spec §4.7): given a class selector, return zero or more snapshots.
// Implementations may sample CPU however they like, provided the result is
// a percentage of one core (100% = one saturated core).
type ProcessMetricsServiceIface interface {
	Scan(class ProcessClass) ([]ProcessSnapshot, error)
}
