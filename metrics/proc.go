// Package metrics is the Process Metrics Adapter: it scans /proc for
// processes matching one of the watched classes and reports CPU/RSS
// snapshots. Grounded on original_source/crates/freezr-core/src/scanner.rs,
// reimplemented against /proc directly instead of shelling out to ps/top
// (spec §9 design note).
package metrics

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// clockTicksPerSec is sysconf(_SC_CLK_TCK); 100 on every Linux platform
// freezr targets.
const clockTicksPerSec = 100

// Service implements domain.ProcessMetricsServiceIface by reading /proc
// directly.
type Service struct {
	procRoot string
}

func NewService() *Service {
	return &Service{procRoot: "/proc"}
}

// Setup lets tests point the adapter at a synthetic /proc tree.
func (s *Service) Setup(procRoot string) {
	s.procRoot = procRoot
}

func (s *Service) Scan(class domain.ProcessClass) ([]domain.ProcessSnapshot, error) {
	pids, err := s.listPids()
	if err != nil {
		return nil, errtax.Wrap(errtax.Transport, "metrics.Scan", err)
	}

	var matched []uint32
	for _, pid := range pids {
		cmdline, err := s.readCmdline(pid)
		if err != nil {
			continue
		}
		if matches(class, cmdline) {
			matched = append(matched, pid)
		}
	}

	snapshots := make([]domain.ProcessSnapshot, 0, len(matched))
	for _, pid := range matched {
		snap, err := s.readOne(pid)
		if err != nil {
			continue
		}
		if class == domain.ClassKesl {
			snap.CPUPercent = s.measureCPUAverage(pid, 3)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (s *Service) listPids() ([]uint32, error) {
	entries, err := os.ReadDir(s.procRoot)
	if err != nil {
		return nil, err
	}
	var pids []uint32
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	return pids, nil
}

func (s *Service) readCmdline(pid uint32) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.procRoot, strconv.FormatUint(uint64(pid), 10), "cmdline"))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(raw), "\x00", " "), nil
}

// matches mirrors scanner.rs's find_*_pids matchers, applied to the full
// cmdline instead of ps aux's truncated command column. Every class
// excludes a "grep" decoy line (e.g. `grep firefox`), matching the
// `!line.contains("grep")` guard present in every find_*_pids function.
func matches(class domain.ProcessClass, cmdline string) bool {
	lower := strings.ToLower(cmdline)
	if strings.Contains(lower, "grep") {
		return false
	}
	switch class {
	case domain.ClassKesl:
		return strings.Contains(cmdline, "/opt/kaspersky/kesl/libexec/kesl") &&
			!strings.Contains(lower, "wdserver") &&
			!strings.Contains(lower, "kesl-starter")
	case domain.ClassNode:
		base := binaryName(cmdline)
		return base == "node"
	case domain.ClassSnap:
		return strings.Contains(lower, "snap")
	case domain.ClassFirefox:
		return strings.Contains(lower, "firefox")
	case domain.ClassBrave:
		return strings.Contains(lower, "brave")
	case domain.ClassTelegram:
		return strings.Contains(lower, "telegram")
	case domain.ClassNvim:
		return strings.Contains(lower, "nvim")
	default:
		return false
	}
}

func binaryName(cmdline string) string {
	first := cmdline
	if idx := strings.IndexByte(cmdline, ' '); idx >= 0 {
		first = cmdline[:idx]
	}
	return filepath.Base(first)
}

func (s *Service) readOne(pid uint32) (domain.ProcessSnapshot, error) {
	cmdline, err := s.readCmdline(pid)
	if err != nil {
		return domain.ProcessSnapshot{}, err
	}
	rss, err := s.readRSSBytes(pid)
	if err != nil {
		return domain.ProcessSnapshot{}, err
	}
	cpu, err := s.measureCPUInstant(pid)
	if err != nil {
		return domain.ProcessSnapshot{}, err
	}
	return domain.ProcessSnapshot{Pid: pid, CPUPercent: cpu, RSSBytes: rss, Cmdline: cmdline}, nil
}

// readRSSBytes parses VmRSS out of /proc/<pid>/status (reported in kB).
func (s *Service) readRSSBytes(pid uint32) (uint64, error) {
	f, err := os.Open(filepath.Join(s.procRoot, strconv.FormatUint(uint64(pid), 10), "status"))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, errtax.New(errtax.Parse, "metrics.readRSSBytes", "malformed VmRSS line")
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, errtax.Wrap(errtax.Parse, "metrics.readRSSBytes", err)
		}
		return kb * 1024, nil
	}
	return 0, nil
}

// cpuTicks reads utime+stime (fields 14,15 of /proc/<pid>/stat) in clock
// ticks. The comm field may itself contain spaces/parens, so fields are
// indexed from the closing paren, matching the kernel's documented format.
func (s *Service) cpuTicks(pid uint32) (uint64, error) {
	raw, err := os.ReadFile(filepath.Join(s.procRoot, strconv.FormatUint(uint64(pid), 10), "stat"))
	if err != nil {
		return 0, err
	}
	content := string(raw)
	close := strings.LastIndexByte(content, ')')
	if close < 0 {
		return 0, errtax.New(errtax.Parse, "metrics.cpuTicks", "malformed stat line")
	}
	rest := strings.Fields(content[close+1:])
	// rest[0] is field 3 (state); utime is field 14 -> rest index 11,
	// stime is field 15 -> rest index 12.
	if len(rest) < 13 {
		return 0, errtax.New(errtax.Parse, "metrics.cpuTicks", "truncated stat line")
	}
	utime, err := strconv.ParseUint(rest[11], 10, 64)
	if err != nil {
		return 0, errtax.Wrap(errtax.Parse, "metrics.cpuTicks", err)
	}
	stime, err := strconv.ParseUint(rest[12], 10, 64)
	if err != nil {
		return 0, errtax.Wrap(errtax.Parse, "metrics.cpuTicks", err)
	}
	return utime + stime, nil
}

// measureCPUInstant takes two /proc/<pid>/stat reads 100ms apart and
// reports the percentage of one core consumed in that window, the same
// definition ps/top use (so multi-threaded processes may exceed 100%).
func (s *Service) measureCPUInstant(pid uint32) (float64, error) {
	return s.measureCPUWindow(pid, 100*time.Millisecond)
}

func (s *Service) measureCPUWindow(pid uint32, window time.Duration) (float64, error) {
	t0, err := s.cpuTicks(pid)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	time.Sleep(window)
	t1, err := s.cpuTicks(pid)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		return 0, nil
	}
	deltaTicks := float64(t1 - t0)
	return (deltaTicks / clockTicksPerSec) / elapsed * 100, nil
}

// measureCPUAverage mirrors scanner.rs's measure_cpu_average(pid, samples):
// take `samples` one-second-spaced readings and average the ones that came
// back nonzero, falling back to 0 if every sample did.
func (s *Service) measureCPUAverage(pid uint32, samples int) float64 {
	var sum float64
	var count int
	for i := 0; i < samples; i++ {
		cpu, err := s.measureCPUWindow(pid, time.Second)
		if err == nil && cpu > 0 {
			sum += cpu
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

var _ domain.ProcessMetricsServiceIface = (*Service)(nil)
