// Package pressure parses and reads Linux PSI (Pressure Stall Information)
// memory-pressure files, grounded on
// original_source/crates/freezr-core/src/memory_pressure.rs.
package pressure

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

const defaultPath = "/proc/pressure/memory"

// Reader implements domain.PressureReaderIface against a PSI file, either
// the system-wide /proc/pressure/memory or a cgroup's memory.pressure.
type Reader struct {
	path string
}

func NewReader() *Reader {
	return &Reader{path: defaultPath}
}

func NewReaderAt(path string) *Reader {
	return &Reader{path: path}
}

func (r *Reader) Read() (domain.MemoryPressure, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return domain.MemoryPressure{}, errtax.Wrap(errtax.NotFound, "pressure.Read", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes the two-line PSI format:
//
//	some avg10=X.XX avg60=X.XX avg300=X.XX total=N
//	full avg10=X.XX avg60=X.XX avg300=X.XX total=N
//
// Both lines are required; either missing is a Parse error.
func Parse(r io.Reader) (domain.MemoryPressure, error) {
	scanner := bufio.NewScanner(r)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return domain.MemoryPressure{}, errtax.Wrap(errtax.Transport, "pressure.Parse", err)
	}
	if len(lines) != 2 {
		return domain.MemoryPressure{}, errtax.New(errtax.Parse, "pressure.Parse", "expected exactly 2 lines (some, full)")
	}

	some, err := parseLine(lines[0], "some")
	if err != nil {
		return domain.MemoryPressure{}, err
	}
	full, err := parseLine(lines[1], "full")
	if err != nil {
		return domain.MemoryPressure{}, err
	}

	return domain.MemoryPressure{
		SomeAvg10:  some.avg10,
		SomeAvg60:  some.avg60,
		SomeAvg300: some.avg300,
		SomeTotal:  some.total,
		FullAvg10:  full.avg10,
		FullAvg60:  full.avg60,
		FullAvg300: full.avg300,
		FullTotal:  full.total,
	}, nil
}

type psiLine struct {
	avg10, avg60, avg300 float64
	total                uint64
}

func parseLine(line, prefix string) (psiLine, error) {
	if !strings.HasPrefix(line, prefix+" ") {
		return psiLine{}, errtax.New(errtax.Parse, "pressure.parseLine", "missing \""+prefix+"\" prefix")
	}

	fields := strings.Fields(line)
	if len(fields) != 5 {
		return psiLine{}, errtax.New(errtax.Parse, "pressure.parseLine", "expected 5 whitespace-separated fields")
	}

	avg10, err := parseValue(fields[1], "avg10")
	if err != nil {
		return psiLine{}, err
	}
	avg60, err := parseValue(fields[2], "avg60")
	if err != nil {
		return psiLine{}, err
	}
	avg300, err := parseValue(fields[3], "avg300")
	if err != nil {
		return psiLine{}, err
	}
	total, err := parseIntValue(fields[4], "total")
	if err != nil {
		return psiLine{}, err
	}

	return psiLine{avg10: avg10, avg60: avg60, avg300: avg300, total: total}, nil
}

func parseValue(field, key string) (float64, error) {
	prefix := key + "="
	if !strings.HasPrefix(field, prefix) {
		return 0, errtax.New(errtax.Parse, "pressure.parseValue", "expected key \""+key+"\"")
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(field, prefix), 64)
	if err != nil {
		return 0, errtax.Wrap(errtax.Parse, "pressure.parseValue", err)
	}
	return v, nil
}

func parseIntValue(field, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(field, prefix) {
		return 0, errtax.New(errtax.Parse, "pressure.parseIntValue", "expected key \""+key+"\"")
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(field, prefix), 10, 64)
	if err != nil {
		return 0, errtax.Wrap(errtax.Parse, "pressure.parseIntValue", err)
	}
	return v, nil
}

var _ domain.PressureReaderIface = (*Reader)(nil)
