package domain

// MemoryPressure is the parsed contents of /proc/pressure/memory (or a
// cgroup's memory.pressure file, same 2-line format). Pure data, produced
// by a pure parser (pressure.Parse / cgroup stats parsing).
type MemoryPressure struct {
	SomeAvg10  float64
	SomeAvg60  float64
	SomeAvg300 float64
	SomeTotal  uint64

	FullAvg10  float64
	FullAvg60  float64
	FullAvg300 float64
	FullTotal  uint64
}

// PressureStatus buckets a reading the way the Stats Projection reports it
// (spec §4.8).
type PressureStatus string

const (
	PressureNone     PressureStatus = "NONE"
	PressureLow      PressureStatus = "LOW"
	PressureMedium   PressureStatus = "MEDIUM"
	PressureHigh     PressureStatus = "HIGH"
	PressureCritical PressureStatus = "CRITICAL"
)

// Status classifies a reading for display purposes only; the reactor's
// Critical/Warning/Normal tiering (reactor.Classify) is the behavioral
// classification and is driven by configured thresholds, not this table.
func (m MemoryPressure) Status() PressureStatus {
	switch {
	case m.FullAvg10 > 0:
		return PressureCritical
	case m.SomeAvg10 > 10:
		return PressureHigh
	case m.SomeAvg10 > 5:
		return PressureMedium
	case m.SomeAvg10 > 0:
		return PressureLow
	default:
		return PressureNone
	}
}

// PressureReaderIface is the Memory-Pressure Reader contract (spec §4.2).
type PressureReaderIface interface {
	Read() (MemoryPressure, error)
}

// PressureConfig configures the reactor's thresholds and chosen actions.
type PressureConfig struct {
	Enabled            bool
	CheckIntervalSecs  uint64
	SomeWarnThreshold  float64
	SomeCritThreshold  float64
	FullWarnThreshold  float64
	FullCritThreshold  float64
	WarningAction      PressureActionKind
	CriticalAction     PressureActionKind
	FreezeHoldSecs     uint64
	NiceLevel          int
	NvimRSSThresholdMB uint64
}
