package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Prefix is prepended to every line of text-formatted log output.
const Prefix = "🖼️  "

// NewLogger creates a new hclog logger with standard settings.
//
// level accepts the plain hclog names (trace, debug, info, warn, error) and
// the "json" / "json:<level>" forms, which switch the output to JSON.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	actualLevel, jsonFormat := ParseLevel(level)
	if os.Getenv("IMGEXPORT_JSON_LOG") == "1" {
		jsonFormat = true
	}

	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(actualLevel),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ParseLevel splits a "json:<level>" value into the level name and the JSON flag.
func ParseLevel(level string) (string, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	if !strings.HasPrefix(level, "json") {
		return level, false
	}
	parts := strings.SplitN(level, ":", 2)
	if len(parts) > 1 && parts[1] != "" {
		return parts[1], true
	}
	return "info", true
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv("IMGEXPORT_LOG_LEVEL")
	if level == "" {
		level = "warn" // library callers stay quiet unless asked
	}
	return level
}

// Output returns the writer log lines should go to. IMGEXPORT_LOG_PATH
// redirects logs to a file opened in append mode; the returned closer must be
// called once logging is done.
func Output(fallback io.Writer) (io.Writer, func() error) {
	noop := func() error { return nil }
	logPath := os.Getenv("IMGEXPORT_LOG_PATH")
	if logPath == "" {
		return fallback, noop
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fallback, noop
	}
	return file, file.Close
}
