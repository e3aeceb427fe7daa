package export

import (
	"fmt"
	"path/filepath"

	"github.com/provide-io/imgexport/pkg/imaging"
)

// Status is the outcome of one export step.
type Status int

const (
	StatusProduced Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusProduced:
		return "produced"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// StepResult is the tagged outcome of a step: Produced carries the written
// paths, Skipped a reason, Failed the error.
type StepResult struct {
	Step   string
	Status Status
	Paths  []string
	Reason string
	Err    error
}

// Produced records a step that wrote paths.
func Produced(step string, paths ...string) StepResult {
	return StepResult{Step: step, Status: StatusProduced, Paths: paths}
}

// Skipped records a best-effort step that was left out.
func Skipped(step, reason string) StepResult {
	return StepResult{Step: step, Status: StatusSkipped, Reason: reason}
}

// Failed records a step whose error ends the export.
func Failed(step string, err error) StepResult {
	return StepResult{Step: step, Status: StatusFailed, Err: err, Reason: err.Error()}
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Step    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Step, w.Message)
}

// Result describes one exported source.
type Result struct {
	Source string
	Stem   string
	Width  int
	Height int
	Mode   imaging.ColorMode
	// OutputDir is where every path in Outputs lives.
	OutputDir string
	// Outputs lists written files in production order, archive last.
	Outputs  []string
	Steps    []StepResult
	Warnings []Warning
	// Archive is the path of the ZIP, empty until it is written.
	Archive        string
	ArchiveEntries []string
}

func (r *Result) record(step StepResult) {
	r.Steps = append(r.Steps, step)
	switch step.Status {
	case StatusProduced:
		r.Outputs = append(r.Outputs, step.Paths...)
	case StatusSkipped:
		r.Warnings = append(r.Warnings, Warning{Step: step.Step, Message: step.Reason})
	}
}

// Step returns the result recorded for name.
func (r *Result) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Step == name {
			return s, true
		}
	}
	return StepResult{}, false
}

// Files returns the produced paths excluding the archive.
func (r *Result) Files() []string {
	files := make([]string, 0, len(r.Outputs))
	for _, p := range r.Outputs {
		if p != r.Archive {
			files = append(files, p)
		}
	}
	return files
}

// Names returns the base names of Outputs.
func (r *Result) Names() []string {
	names := make([]string, len(r.Outputs))
	for i, p := range r.Outputs {
		names[i] = filepath.Base(p)
	}
	return names
}
