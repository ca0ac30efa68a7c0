package domain

import "encoding/json"

// ActionKind is the closed set of remediations a single-tier class or the
// memory-pressure reactor can apply. Replaces the source's "nice"/"freeze"/
// "kill" strings with an exhaustive Go type (spec §9 redesign note).
type ActionKind int

const (
	ActionNice ActionKind = iota
	ActionFreeze
	ActionKill
)

func (a ActionKind) String() string {
	switch a {
	case ActionNice:
		return "nice"
	case ActionFreeze:
		return "freeze"
	case ActionKill:
		return "kill"
	default:
		return "unknown"
	}
}

// MarshalJSON renders an ActionKind as its string name, so the stats
// export shows "kill" instead of a bare integer.
func (a ActionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON is the inverse of MarshalJSON, needed for stats files to
// round-trip through decode.
func (a *ActionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "nice":
		*a = ActionNice
	case "freeze":
		*a = ActionFreeze
	case "kill":
		*a = ActionKill
	default:
		*a = ActionNice
	}
	return nil
}

// PressureActionKind is the action set available to the memory-pressure
// reactor; it additionally allows a pure logging response.
type PressureActionKind int

const (
	PressureActionLog PressureActionKind = iota
	PressureActionNice
	PressureActionFreeze
	PressureActionKill
)

func (a PressureActionKind) String() string {
	switch a {
	case PressureActionLog:
		return "log"
	case PressureActionNice:
		return "nice"
	case PressureActionFreeze:
		return "freeze"
	case PressureActionKill:
		return "kill"
	default:
		return "unknown"
	}
}

// TwoTierConfig backs Firefox/Brave/Telegram: freeze at cpu_freeze, escalate
// to kill at cpu_kill. Invariant: CPUKill > CPUFreeze.
type TwoTierConfig struct {
	Enabled            bool
	CPUFreeze          float64
	CPUKill            float64
	FreezeHoldSecs     uint64
	MaxFreezeViolations uint32
	MaxKillViolations   uint32
}

// Validate enforces the invariant from spec §3.
func (c TwoTierConfig) Validate() error {
	if c.CPUKill <= c.CPUFreeze {
		return errInvalidTier("kill threshold must exceed freeze threshold")
	}
	if c.MaxFreezeViolations == 0 || c.MaxKillViolations == 0 {
		return errInvalidTier("max_violations must be > 0")
	}
	return nil
}

// SingleTierActionConfig backs Snap: one threshold, one configured action,
// fires after MaxViolations consecutive hits.
type SingleTierActionConfig struct {
	Enabled       bool
	CPUThreshold  float64
	Action        ActionKind
	NiceLevel     int
	HoldSecs      uint64
	MaxViolations uint32
}

func (c SingleTierActionConfig) Validate() error {
	if c.MaxViolations == 0 {
		return errInvalidTier("max_violations must be > 0")
	}
	if c.Action == ActionNice && (c.NiceLevel < 0 || c.NiceLevel > 19) {
		return errInvalidTier("nice_level must be in [0,19]")
	}
	return nil
}

// SingleTierKillConfig backs Node: no counters, no hysteresis -- every tick
// that a matching process exceeds the threshold it is (optionally) killed
// outright.
type SingleTierKillConfig struct {
	Enabled      bool
	CPUThreshold float64
	AutoKill     bool
}

// errInvalidTier is a tiny local helper kept here (rather than importing
// errtax) to avoid a domain->errtax->domain cycle; engine-facing code
// wraps these with errtax.Validation.
type tierError string

func (e tierError) Error() string { return string(e) }

func errInvalidTier(msg string) error { return tierError(msg) }
