package domain

// SignalPriorityExecutorIface is the Process Action Executor contract
// (spec §4.6, grounded on executor.rs ProcessExecutor): the only code
// path in the daemon allowed to send signals or renice a host process.
type SignalPriorityExecutorIface interface {
	Exists(pid uint32) (bool, error)
	Kill(pid uint32) error
	Freeze(pid uint32) error
	Unfreeze(pid uint32) error
	Renice(pid uint32, niceLevel int) error
}
