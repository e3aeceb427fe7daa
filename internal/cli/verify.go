package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/provide-io/imgexport/pkg/verify"
)

// ErrVerificationFailed is returned when an archive fails any check.
var ErrVerificationFailed = errors.New("✗ archive verification failed")

func newVerifyCommand(a *App) *cobra.Command {
	var against string

	cmd := &cobra.Command{
		Use:   "verify ARCHIVE",
		Short: "Check an exported ZIP archive",
		Long: `Decode every entry of an exported archive, check the SVG wrapper and favicon
sizes, and print a sha256 checksum per entry. With --against, each entry must
also match the file of the same name in DIR.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{err: fmt.Errorf("verify takes exactly one ARCHIVE, got %d", len(args))}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd, args[0], against)
		},
	}
	cmd.Flags().StringVar(&against, "against", "", "Directory holding the exported files to compare with")
	return cmd
}

func (a *App) runVerify(cmd *cobra.Command, archive, against string) error {
	sess, err := a.newSession(cmd, "imgexport-verify")
	if err != nil {
		return err
	}
	defer sess.close()

	path, err := a.absPath(archive)
	if err != nil {
		return err
	}
	opts := verify.Options{}
	if against != "" {
		if opts.Against, err = a.absPath(against); err != nil {
			return err
		}
	}

	report, err := verify.New(a.Fs, sess.logger).Verify(path, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	for _, e := range report.Entries {
		if e.Err != nil {
			bad.Fprintf(out, "✗ %s: %v\n", e.Name, e.Err)
			continue
		}
		ok.Fprintf(out, "✓ %s", e.Name)
		fmt.Fprintf(out, "  %s\n", e.Checksum)
	}

	if !report.Passed() {
		return fmt.Errorf("%w: %d error(s)", ErrVerificationFailed, len(report.Errors))
	}
	ok.Fprintf(out, "✓ %s verified (%d entries)\n", a.displayPath(path), len(report.Entries))
	return nil
}
