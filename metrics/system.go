package metrics

import (
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// SystemHealth reads system-wide load average and memory usage via
// gopsutil, feeding the Stats Projection's SystemHealth section (spec
// §4.1/§4.8) without hand-rolling /proc/loadavg and /proc/meminfo parsers.
func SystemHealth() (domain.SystemHealth, error) {
	avg, err := load.Avg()
	if err != nil {
		return domain.SystemHealth{}, errtax.Wrap(errtax.Transport, "metrics.SystemHealth", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return domain.SystemHealth{}, errtax.Wrap(errtax.Transport, "metrics.SystemHealth", err)
	}
	return domain.SystemHealth{
		Load1:             avg.Load1,
		Load5:             avg.Load5,
		Load15:            avg.Load15,
		MemTotalBytes:     vm.Total,
		MemAvailableBytes: vm.Available,
		MemUsedPercent:    vm.UsedPercent,
	}, nil
}
