package domain

// ServiceControllerIface wraps the systemd unit operations the KESL
// restart pass needs (spec §4.4, grounded on systemd.rs SystemdService):
// reload, restart-with-guard, and active-state probing.
type ServiceControllerIface interface {
	IsActive(unit string) (bool, error)
	ReloadAndRestart(unit string) error
	TimeSinceLastRestartSecs(unit string) uint64
}
