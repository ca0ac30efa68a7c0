// Package statsexport writes the Stats Projection out as JSON for
// external consumers (a dashboard, a metrics scraper), atomically so a
// reader never observes a half-written file. Grounded on the teacher's
// PID-file discipline (cmd/sysbox-fs/main.go's
// libutils.CreatePidFile/DestroyPidFile: temp file, then rename into
// place) applied to a stats blob instead of a PID.
package statsexport

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/MajotraderLucky/freezr/domain"
	"github.com/MajotraderLucky/freezr/errtax"
)

// DefaultPath is used when no export path is configured (spec.md Open
// Question #3, resolved as configurable with this default).
const DefaultPath = "/tmp/freezr-stats.json"

// Exporter writes a domain.StatsSnapshot to Path on every call to Write.
type Exporter struct {
	Path string
}

func NewExporter(path string) *Exporter {
	if path == "" {
		path = DefaultPath
	}
	return &Exporter{Path: path}
}

// Write serializes snap and atomically replaces the file at e.Path: write
// to a sibling temp file, fsync, then rename over the destination.
func (e *Exporter) Write(snap domain.StatsSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errtax.Wrap(errtax.Parse, "statsexport.Write", err)
	}

	dir := filepath.Dir(e.Path)
	tmp, err := os.CreateTemp(dir, ".freezr-stats-*.tmp")
	if err != nil {
		return errtax.Wrap(errtax.Transport, "statsexport.Write", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errtax.Wrap(errtax.Transport, "statsexport.Write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errtax.Wrap(errtax.Transport, "statsexport.Write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errtax.Wrap(errtax.Transport, "statsexport.Write", err)
	}

	if err := os.Rename(tmpPath, e.Path); err != nil {
		os.Remove(tmpPath)
		return errtax.Wrap(errtax.Transport, "statsexport.Write", err)
	}
	return nil
}
