package cgroup

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MajotraderLucky/freezr/errtax"
)

// readFile/writeFile map the cgroupfs error cases the original
// utils.rs read_cgroup_file/write_cgroup_file translate (NotFound,
// PermissionDenied) onto the error taxonomy.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrapFsErr("cgroup.readFile", err)
	}
	return string(data), nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return wrapFsErr("cgroup.writeFile", err)
	}
	return nil
}

func wrapFsErr(op string, err error) error {
	if os.IsNotExist(err) {
		return errtax.Wrap(errtax.NotFound, op, err)
	}
	if os.IsPermission(err) {
		return errtax.Wrap(errtax.Permission, op, err)
	}
	return errtax.Wrap(errtax.Transport, op, err)
}

// convertPercentToQuota mirrors utils.rs convert_percent_to_quota: period
// is always 100000us, quota scales linearly off the configured percentage.
func convertPercentToQuota(percent float64) (quotaUs uint64, periodUs uint64) {
	return uint64(percent / 100.0 * 100000), 100000
}

func convertQuotaToPercent(quotaUs, periodUs uint64) float64 {
	if periodUs == 0 {
		return 0
	}
	return float64(quotaUs) / float64(periodUs) * 100
}

// parseStatFile parses the key/value-per-line format shared by cpu.stat
// and memory.stat; unknown keys are ignored, matching utils.rs
// parse_cpu_stat/parse_memory_stat.
func parseStatFile(content string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errtax.New(errtax.Parse, "cgroup.parseStatFile", "malformed stat line: "+line)
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, errtax.Wrap(errtax.Parse, "cgroup.parseStatFile", err)
		}
		out[fields[0]] = v
	}
	return out, nil
}

// parseMaxOrBytes decodes a cgroup "max" sentinel or numeric byte count,
// as seen in memory.max/memory.high/memory.current.
func parseMaxOrBytes(content string) (uint64, bool, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "max" {
		return 0, true, nil
	}
	v, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, false, errtax.Wrap(errtax.Parse, "cgroup.parseMaxOrBytes", err)
	}
	return v, false, nil
}

func processExists(procRoot string, pid uint32) bool {
	_, err := os.Stat(filepath.Join(procRoot, strconv.FormatUint(uint64(pid), 10)))
	return err == nil
}
