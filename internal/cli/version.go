package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"
)

// Version of the imgexport command.
const Version = "0.1.0"

// BuildTimestamp returns the VCS commit time of the binary, falling back to
// its modification time.
func BuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// PrintVersion writes the version banner.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "imgexport %s\n", Version)
	fmt.Fprintf(w, "Built: %s\n", BuildTimestamp())
}
