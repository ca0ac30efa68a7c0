// Package systemdctl is the Service Controller: it wraps systemd unit
// management over D-Bus so the KESL restart pass can reload and restart a
// unit with a cooldown guard. Grounded on
// original_source/crates/freezr-core/src/systemd.rs, ported from that
// file's raw zbus calls to the idiomatic
// github.com/coreos/go-systemd/v22/dbus client the teacher already depends
// on (it uses daemon.SdNotify from the same module).
package systemdctl

import (
	"context"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/dbus"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// Controller implements domain.ServiceControllerIface. One Controller
// tracks the last-restart timestamp per unit so the cooldown guard
// survives across ticks.
type Controller struct {
	minIntervalSecs uint64
	clock           domain.ClockIface

	mu           sync.Mutex
	lastRestart  map[string]uint64 // unit -> MonotonicSecs() at last restart
}

func NewController(clock domain.ClockIface, minIntervalSecs uint64) *Controller {
	return &Controller{
		minIntervalSecs: minIntervalSecs,
		clock:           clock,
		lastRestart:     make(map[string]uint64),
	}
}

func normalizeUnit(unit string) string {
	if strings.HasSuffix(unit, ".service") {
		return unit
	}
	return unit + ".service"
}

func (c *Controller) dial(ctx context.Context) (*dbus.Conn, error) {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, errtax.Wrap(errtax.Transport, "systemdctl.dial", err)
	}
	return conn, nil
}

func (c *Controller) IsActive(unit string) (bool, error) {
	unit = normalizeUnit(unit)
	ctx := context.Background()

	conn, err := c.dial(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	props, err := conn.GetUnitPropertiesContext(ctx, unit)
	if err != nil {
		return false, errtax.Wrap(errtax.Transport, "systemdctl.IsActive", err)
	}
	state, ok := props["ActiveState"].(string)
	if !ok {
		return false, errtax.New(errtax.Parse, "systemdctl.IsActive", "ActiveState property missing or wrong type")
	}
	return state == "active", nil
}

// canRestart mirrors systemd.rs's can_restart: never-restarted units may
// always restart; otherwise the cooldown must have elapsed.
func (c *Controller) canRestart(unit string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.lastRestart[unit]
	if !ok {
		return true
	}
	return c.clock.MonotonicSecs()-last >= c.minIntervalSecs
}

// ReloadAndRestart mirrors restart_with_reload: guard on the cooldown,
// daemon-reload, restart, stamp the clock.
func (c *Controller) ReloadAndRestart(unit string) error {
	unit = normalizeUnit(unit)

	if !c.canRestart(unit) {
		return errtax.New(errtax.Interval, "systemdctl.ReloadAndRestart", "minimum restart interval has not elapsed")
	}

	ctx := context.Background()
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.ReloadContext(ctx); err != nil {
		return errtax.Wrap(errtax.Transport, "systemdctl.ReloadAndRestart", err)
	}

	done := make(chan string, 1)
	if _, err := conn.RestartUnitContext(ctx, unit, "replace", done); err != nil {
		return errtax.Wrap(errtax.Transport, "systemdctl.ReloadAndRestart", err)
	}
	<-done

	c.mu.Lock()
	c.lastRestart[unit] = c.clock.MonotonicSecs()
	c.mu.Unlock()
	return nil
}

func (c *Controller) TimeSinceLastRestartSecs(unit string) uint64 {
	unit = normalizeUnit(unit)
	c.mu.Lock()
	last, ok := c.lastRestart[unit]
	c.mu.Unlock()
	if !ok {
		return ^uint64(0)
	}
	return c.clock.MonotonicSecs() - last
}

var _ domain.ServiceControllerIface = (*Controller)(nil)
