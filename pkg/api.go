// Package pkg exposes one-call helpers for embedding imgexport without the
// command line.
package pkg

import (
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/imgexport/pkg/export"
	"github.com/provide-io/imgexport/pkg/logging"
	"github.com/provide-io/imgexport/pkg/verify"
)

// ExportFile runs the export pipeline on source with the stock settings,
// writing into outDir.
func ExportFile(source, outDir string, favicon, website bool) (*export.Result, error) {
	return ExportFileWithLogger(source, outDir, favicon, website, defaultLogger("imgexport"))
}

// ExportFileWithLogger is ExportFile with a caller-supplied logger.
func ExportFileWithLogger(source, outDir string, favicon, website bool, logger hclog.Logger) (*export.Result, error) {
	cfg := export.DefaultConfig()
	cfg.Logger = logger
	return export.New(cfg).Export(source, export.Options{
		Favicon:   favicon,
		Website:   website,
		OutputDir: outDir,
	})
}

// VerifyArchive checks an exported ZIP and, when against is non-empty,
// compares its entries with the files in that directory.
func VerifyArchive(archivePath, against string) (*verify.Report, error) {
	cfg := export.DefaultConfig()
	return verify.New(cfg.Fs, defaultLogger("imgexport-verify")).Verify(archivePath, verify.Options{Against: against})
}

func defaultLogger(name string) hclog.Logger {
	return logging.NewLogger(name, logging.GetLogLevel(), nil)
}
