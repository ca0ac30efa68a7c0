package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MajotraderLucky/freezr/domain"
)

func writeFakeProc(t *testing.T, root string, pid uint32, cmdline, status, stat string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprint(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(cmdline), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status"), []byte(status), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))
}

func statLine(pid uint32, comm string, utime, stime uint64) string {
	fields := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		fields = append(fields, "0")
	}
	// fields starts at stat field 4 (after the state "R"): utime is field
	// 14, stime field 15.
	fields[14-4] = fmt.Sprint(utime)
	fields[15-4] = fmt.Sprint(stime)
	return fmt.Sprintf("%d (%s) R %s", pid, comm, joinFields(fields))
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += " "
		}
		out += f
	}
	return out
}

func TestScanMatchesNodeByExactBinaryName(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 101, "node\x00server.js\x00", "VmRSS:\t 2048 kB\n", statLine(101, "node", 0, 0))
	writeFakeProc(t, root, 102, "/usr/bin/vim\x00", "VmRSS:\t 1024 kB\n", statLine(102, "vim", 0, 0))

	s := NewService()
	s.Setup(root)

	snaps, err := s.Scan(domain.ClassNode)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint32(101), snaps[0].Pid)
}

func TestScanExcludesKeslHelperProcesses(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 201, "/opt/kaspersky/kesl/libexec/kesl\x00", "VmRSS:\t 4096 kB\n", statLine(201, "kesl", 0, 0))
	writeFakeProc(t, root, 202, "/opt/kaspersky/kesl/libexec/wdserver\x00", "VmRSS:\t 1024 kB\n", statLine(202, "wdserver", 0, 0))

	s := NewService()
	s.Setup(root)

	snaps, err := s.Scan(domain.ClassKesl)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint32(201), snaps[0].Pid)
}

func TestRSSMegabytesTruncates(t *testing.T) {
	snap := domain.ProcessSnapshot{RSSBytes: 1500 * 1024}
	assert.Equal(t, uint64(1), snap.RSSMegabytes())
}

func TestScanExcludesGrepDecoyProcesses(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 401, "/usr/bin/firefox\x00", "VmRSS:\t 8192 kB\n", statLine(401, "firefox", 0, 0))
	writeFakeProc(t, root, 402, "grep\x00firefox\x00", "VmRSS:\t 512 kB\n", statLine(402, "grep", 0, 0))

	s := NewService()
	s.Setup(root)

	snaps, err := s.Scan(domain.ClassFirefox)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint32(401), snaps[0].Pid)
}

func TestScanReturnsEmptyForNoMatches(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 301, "/usr/bin/vim\x00", "VmRSS:\t 1024 kB\n", statLine(301, "vim", 0, 0))

	s := NewService()
	s.Setup(root)

	snaps, err := s.Scan(domain.ClassBrave)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
