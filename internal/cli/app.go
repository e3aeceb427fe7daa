// Package cli implements the imgexport command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/provide-io/imgexport/internal/config"
	"github.com/provide-io/imgexport/internal/workspace"
	"github.com/provide-io/imgexport/pkg/export"
	"github.com/provide-io/imgexport/pkg/logging"
)

// App holds the process-level collaborators of the command line.
type App struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
	Clock  func() time.Time
	Getwd  func() (string, error)
	// ConfigureExport, when set, adjusts the pipeline configuration after
	// it has been built from config.
	ConfigureExport func(*export.Config)
}

// NewApp returns an App bound to the real process environment.
func NewApp() *App {
	return &App{
		Fs:     afero.NewOsFs(),
		Stdout: color.Output,
		Stderr: color.Error,
		Clock:  time.Now,
		Getwd:  os.Getwd,
	}
}

// Execute runs the command line with args and returns the exit code.
func Execute(args []string) int {
	return NewApp().Run(args)
}

// Run executes args against a fresh command tree.
func (a *App) Run(args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	cmd, err := root.ExecuteC()
	if err == nil {
		return ExitOK
	}

	code := ExitCode(err)
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	if code == ExitUsage {
		fmt.Fprint(a.Stderr, cmd.UsageString())
	}
	return code
}

// session is what a command needs once flags and config are resolved.
type session struct {
	cfg    *config.Config
	logger hclog.Logger
	close  func() error
}

// newSession loads configuration (honouring --config and bound flags) and
// builds the logger.
func (a *App) newSession(cmd *cobra.Command, name string) (*session, error) {
	loader, err := config.NewLoader(a.Fs)
	if err != nil {
		return nil, err
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader.SetConfigFile(workspace.ExpandHome(path))
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if level == "" {
		level = logging.GetLogLevel()
	}
	if cfg.Log.JSON {
		if _, isJSON := logging.ParseLevel(level); !isJSON {
			level = "json:" + level
		}
	}
	output, closer := logging.Output(a.Stderr)
	logger := logging.NewLogger(name, level, output)
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}
	return &session{cfg: cfg, logger: logger, close: closer}, nil
}

// absPath resolves p against the working directory.
func (a *App) absPath(p string) (string, error) {
	p = workspace.ExpandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	wd, err := a.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return filepath.Join(wd, p), nil
}

// displayPath renders p relative to the working directory when it lies
// beneath it.
func (a *App) displayPath(p string) string {
	wd, err := a.Getwd()
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(wd, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
