package cli

import (
	"errors"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitPanic   = 101
)

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *usageError
	if errors.As(err, &usage) || errors.Is(err, exporterrors.ErrInputNotFound) {
		return ExitUsage
	}
	return ExitFailure
}
