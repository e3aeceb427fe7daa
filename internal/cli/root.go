package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/provide-io/imgexport/internal/workspace"
	"github.com/provide-io/imgexport/pkg/export"
)

// exportFlags are the root command flags.
type exportFlags struct {
	outDir      string
	favicon     bool
	website     bool
	public      bool
	noTimestamp bool
	version     bool
}

// NewRootCommand builds the imgexport command tree.
func NewRootCommand(a *App) *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "imgexport [flags] SOURCE...",
		Short: "Convert an image into web-ready formats",
		Long: `Convert PNG, JPEG and other rasters into PNG, JPEG, WebP, AVIF and an SVG
wrapper, optionally with favicons, and bundle the results into a ZIP.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.version {
				PrintVersion(cmd.OutOrStdout())
				return nil
			}
			if len(args) == 0 {
				return &usageError{err: errors.New("at least one SOURCE is required")}
			}
			return a.runExport(cmd, flags, args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.Flags().StringVar(&flags.outDir, "out-dir", workspace.DefaultOutDir, "Directory to place the converted files")
	cmd.Flags().BoolVar(&flags.favicon, "favicon", false, "Also generate favicon.ico and touch icons")
	cmd.Flags().BoolVar(&flags.website, "website", false, "Also generate AVIF and nest outputs under web/")
	cmd.Flags().BoolVar(&flags.public, "public", false, "Write to public/ instead of --out-dir")
	cmd.Flags().BoolVar(&flags.noTimestamp, "no-timestamp", false, "Do not create a timestamped subdirectory")
	cmd.Flags().BoolVarP(&flags.version, "version", "V", false, "Show version information")

	cmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/imgexport/imgexport.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error, json[:level])")

	cmd.AddCommand(newVerifyCommand(a))
	return cmd
}

func (a *App) runExport(cmd *cobra.Command, flags *exportFlags, sources []string) error {
	sess, err := a.newSession(cmd, "imgexport")
	if err != nil {
		return err
	}
	defer sess.close()

	expCfg, err := sess.cfg.ExporterConfig(a.Fs, sess.logger)
	if err != nil {
		return err
	}
	expCfg.Clock = a.Clock
	if a.ConfigureExport != nil {
		a.ConfigureExport(&expCfg)
	}
	exporter := export.New(expCfg)

	req := workspace.Request{
		OutDir:      sess.cfg.OutDir,
		Public:      flags.public,
		Website:     flags.website,
		NoTimestamp: flags.noTimestamp,
	}
	outDir, err := a.absPath(workspace.Resolve(req, a.Clock()))
	if err != nil {
		return err
	}
	if err := workspace.Create(a.Fs, outDir, expCfg.DirMode); err != nil {
		return err
	}
	sess.logger.Debug("output directory ready", "path", outDir)

	opts := export.Options{
		Favicon:       flags.favicon,
		Website:       flags.website,
		Public:        flags.public,
		TimestampDirs: !flags.noTimestamp,
		OutputDir:     outDir,
	}

	out := cmd.OutOrStdout()
	var produced []string
	for _, source := range sources {
		src, err := a.absPath(source)
		if err != nil {
			return err
		}
		if err := workspace.ValidateSource(a.Fs, src); err != nil {
			return err
		}

		fmt.Fprintf(out, "Converting: %s\n", src)
		result, err := exporter.Export(src, opts)
		if result != nil {
			a.printWarnings(result)
			produced = append(produced, result.Outputs...)
		}
		if err != nil {
			return fmt.Errorf("exporting %s: %w", src, err)
		}
	}

	a.printSummary(out, produced)
	return nil
}

func (a *App) printWarnings(result *export.Result) {
	warn := color.New(color.FgYellow)
	for _, w := range result.Warnings {
		warn.Fprintf(a.Stderr, "⚠ %s skipped for %s: %s\n", w.Step, result.Stem, w.Message)
	}
}

func (a *App) printSummary(out io.Writer, produced []string) {
	fmt.Fprintln(out)
	color.New(color.FgGreen, color.Bold).Fprintln(out, "✓ Export complete:")
	for _, p := range produced {
		fmt.Fprintf(out, "   %s\n", a.displayPath(p))
	}
}
