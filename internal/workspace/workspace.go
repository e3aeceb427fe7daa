// Package workspace resolves and prepares the directory a run writes to
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// Directory names
const (
	DefaultOutDir = "dist"
	PublicDir     = "public"
	WebDir        = "web"
)

// TimestampLayout names the per-run subdirectory (YYYYMMDD-HHMMSS).
const TimestampLayout = "20060102-150405"

// Request describes how the output directory should be derived
type Request struct {
	OutDir      string
	Public      bool
	Website     bool
	NoTimestamp bool
}

// Resolve returns the output directory for req at time now.
//
// The base is public/ in public mode, else OutDir (dist by default). Unless
// timestamping is disabled a YYYYMMDD-HHMMSS subdirectory is added, and in
// website mode outputs nest one level further under web/.
func Resolve(req Request, now time.Time) string {
	base := req.OutDir
	if req.Public {
		base = PublicDir
	}
	if base == "" {
		base = DefaultOutDir
	}
	base = ExpandHome(base)

	if req.NoTimestamp {
		return filepath.Clean(base)
	}

	dir := filepath.Join(base, now.Format(TimestampLayout))
	if req.Website {
		dir = filepath.Join(dir, WebDir)
	}
	return dir
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home := os.Getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return path
		}
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Create makes path and its parents. Existing directories are fine.
func Create(fs afero.Fs, path string, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o755
	}
	if err := fs.MkdirAll(path, mode); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w: %w", path, exporterrors.ErrWrite, err)
	}
	return nil
}

// Prepare resolves the output directory for req and creates it.
func Prepare(fs afero.Fs, req Request, now time.Time, mode os.FileMode) (string, error) {
	dir := Resolve(req, now)
	if err := Create(fs, dir, mode); err != nil {
		return "", err
	}
	return dir, nil
}
