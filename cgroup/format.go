package cgroup

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func formatQuota(quotaUs, periodUs uint64) string {
	return strconv.FormatUint(quotaUs, 10) + " " + strconv.FormatUint(periodUs, 10)
}

func formatBytes(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func formatPid(pid uint32) string {
	return strconv.FormatUint(uint64(pid), 10)
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

// controlFileNames lists every pseudo-file the manager may have written
// into a cgroup directory. On real cgroupfs these are kernel-exposed and
// vanish with the directory on rmdir regardless of this cleanup; it only
// matters when RootPath points at a plain directory.
var controlFileNames = []string{
	"cpu.max", "cpu.weight", "cpu.stat",
	"memory.max", "memory.high", "memory.current", "memory.peak", "memory.stat",
	"memory.pressure", "cgroup.procs", "cgroup.subtree_control",
}

func removeControlFiles(dir string) {
	for _, name := range controlFileNames {
		_ = os.Remove(filepath.Join(dir, name))
	}
}
