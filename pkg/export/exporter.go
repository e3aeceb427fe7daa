// Package export runs the image export pipeline: one decoded source becomes
// PNG, JPEG, WebP, AVIF, SVG and favicon outputs bundled into a ZIP.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/provide-io/imgexport/pkg/bundle"
	"github.com/provide-io/imgexport/pkg/encoders"
	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
	"github.com/provide-io/imgexport/pkg/favicon"
	"github.com/provide-io/imgexport/pkg/imaging"
	"github.com/provide-io/imgexport/pkg/svg"
)

// Step names
const (
	StepDecode  = "decode"
	StepPrepare = "prepare"
	StepPNG     = "png"
	StepJPEG    = "jpeg"
	StepWebP    = "webp"
	StepAVIF    = "avif"
	StepSVG     = "svg"
	StepFavicon = "favicon"
	StepArchive = "archive"
)

// ArchiveSuffix is appended to the stem to name the ZIP.
const ArchiveSuffix = "_web_images.zip"

// Config holds the collaborators and tunables of an Exporter.
type Config struct {
	Fs       afero.Fs
	Logger   hclog.Logger
	Encoders encoders.Set
	Filter   imaging.Filter
	Archive  bundle.Options
	FileMode os.FileMode
	DirMode  os.FileMode
	// Clock stamps the archive README and entries.
	Clock func() time.Time
}

// DefaultConfig returns the stock pipeline on the OS filesystem.
func DefaultConfig() Config {
	return Config{
		Fs:       afero.NewOsFs(),
		Logger:   hclog.NewNullLogger(),
		Encoders: encoders.NewSet(encoders.DefaultSettings()),
		Filter:   imaging.DefaultFilter,
		Archive:  bundle.DefaultOptions(),
		FileMode: 0o644,
		DirMode:  0o755,
		Clock:    time.Now,
	}
}

// Exporter runs the pipeline. It holds no per-source state.
type Exporter struct {
	cfg    Config
	logger hclog.Logger
}

// New creates an Exporter, filling zero fields of cfg from DefaultConfig.
func New(cfg Config) *Exporter {
	def := DefaultConfig()
	if cfg.Fs == nil {
		cfg.Fs = def.Fs
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.Encoders == nil {
		cfg.Encoders = def.Encoders
	}
	if cfg.Filter == "" {
		cfg.Filter = def.Filter
	}
	if cfg.Archive.Layout == "" && cfg.Archive.Method == "" && cfg.Archive.Level == 0 {
		cfg.Archive = def.Archive
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = def.FileMode
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = def.DirMode
	}
	if cfg.Clock == nil {
		cfg.Clock = def.Clock
	}
	cfg.Archive.FileMode = cfg.FileMode
	return &Exporter{cfg: cfg, logger: cfg.Logger.Named("export")}
}

// run carries the state of one Export call.
type run struct {
	*Exporter
	src     *imaging.SourceImage
	opts    Options
	result  *Result
	entries []bundle.Entry
}

// Export converts the image at path into every output selected by opts.
// The returned Result is non-nil even on error and lists whatever was
// written before the failure.
func (e *Exporter) Export(path string, opts Options) (*Result, error) {
	result := &Result{Source: path, Stem: imaging.Stem(path), OutputDir: opts.OutputDir}

	src, err := imaging.Open(e.cfg.Fs, path)
	if err != nil {
		result.record(Failed(StepDecode, err))
		return result, err
	}
	result.Width, result.Height, result.Mode = src.Width(), src.Height(), src.Mode
	e.logger.Debug("source decoded", "path", path, "format", src.Format,
		"mode", src.Mode, "width", src.Width(), "height", src.Height())

	if opts.OutputDir == "" {
		opts.OutputDir = "."
		result.OutputDir = "."
	}
	if err := e.cfg.Fs.MkdirAll(opts.OutputDir, e.cfg.DirMode); err != nil {
		err = fmt.Errorf("creating %s: %w: %w", opts.OutputDir, exporterrors.ErrWrite, err)
		result.record(Failed(StepPrepare, err))
		return result, err
	}

	r := &run{Exporter: e, src: src, opts: opts, result: result}

	pngData, err := r.writePNG()
	if err != nil {
		return result, err
	}
	if err := r.writeJPEG(); err != nil {
		return result, err
	}
	if err := r.writeBestEffort(StepWebP, encoders.FormatWebP, src.Image); err != nil {
		return result, err
	}
	if opts.Website {
		if err := r.writeBestEffort(StepAVIF, encoders.FormatAVIF, src.Image); err != nil {
			return result, err
		}
	}
	if err := r.writeSVG(pngData); err != nil {
		return result, err
	}
	if opts.Favicon {
		if err := r.writeFavicons(); err != nil {
			return result, err
		}
	}
	if err := r.writeArchive(); err != nil {
		return result, err
	}

	for _, w := range result.Warnings {
		e.logger.Warn("output skipped", "step", w.Step, "reason", w.Message)
	}
	e.logger.Info("export complete", "source", path, "outputs", len(result.Outputs),
		"skipped", len(result.Warnings))
	return result, nil
}

func (r *run) outputPath(name string) string {
	return filepath.Join(r.opts.OutputDir, name)
}

func (r *run) fail(step string, err error) error {
	r.result.record(Failed(step, err))
	r.logger.Error("export step failed", "step", step, "error", err)
	return err
}

// writeFile writes data and queues it for the archive.
func (r *run) writeFile(name string, category bundle.Category, data []byte) (string, error) {
	path := r.outputPath(name)
	if err := afero.WriteFile(r.cfg.Fs, path, data, r.cfg.FileMode); err != nil {
		return "", fmt.Errorf("writing %s: %w: %w", path, exporterrors.ErrWrite, err)
	}
	r.entries = append(r.entries, bundle.Entry{Name: name, Category: category, Path: path})
	r.logger.Debug("file written", "path", path, "bytes", len(data))
	return path, nil
}

func (r *run) encode(format string, img image.Image) ([]byte, encoders.Encoder, error) {
	enc, err := r.cfg.Encoders.Lookup(format)
	if err != nil {
		return nil, nil, err
	}
	if !enc.Available() {
		return nil, enc, fmt.Errorf("%w: %s encoder unavailable", exporterrors.ErrUnsupportedFormat, format)
	}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return nil, enc, fmt.Errorf("encoding %s: %w: %w", format, exporterrors.ErrEncode, err)
	}
	return buf.Bytes(), enc, nil
}

func (r *run) writePNG() ([]byte, error) {
	data, enc, err := r.encode(encoders.FormatPNG, r.src.Image)
	if err != nil {
		return nil, r.fail(StepPNG, err)
	}
	path, err := r.writeFile(r.result.Stem+"."+enc.Extension(), bundle.CategoryStandard, data)
	if err != nil {
		return nil, r.fail(StepPNG, err)
	}
	r.result.record(Produced(StepPNG, path))
	return data, nil
}

func (r *run) writeJPEG() error {
	data, enc, err := r.encode(encoders.FormatJPEG, imaging.Flatten(r.src.Image))
	if err != nil {
		return r.fail(StepJPEG, err)
	}
	path, err := r.writeFile(r.result.Stem+"."+enc.Extension(), bundle.CategoryStandard, data)
	if err != nil {
		return r.fail(StepJPEG, err)
	}
	r.result.record(Produced(StepJPEG, path))
	return nil
}

// writeBestEffort encodes a format whose encoder may be missing or may
// reject the image. Encoder problems become a skip; write errors stay fatal.
func (r *run) writeBestEffort(step, format string, img image.Image) error {
	data, enc, err := r.encode(format, img)
	if err != nil {
		if errors.Is(err, exporterrors.ErrEncode) || errors.Is(err, exporterrors.ErrUnsupportedFormat) {
			r.result.record(Skipped(step, err.Error()))
			return nil
		}
		return r.fail(step, err)
	}
	if len(data) == 0 {
		r.result.record(Skipped(step, fmt.Sprintf("%s encoder produced no data", format)))
		return nil
	}
	path, err := r.writeFile(r.result.Stem+"."+enc.Extension(), bundle.CategoryWeb, data)
	if err != nil {
		return r.fail(step, err)
	}
	r.result.record(Produced(step, path))
	return nil
}

func (r *run) writeSVG(pngData []byte) error {
	doc := svg.Wrap(pngData, r.src.Width(), r.src.Height())
	name := r.result.Stem + ".svg"
	path := r.outputPath(name)
	if err := afero.WriteFile(r.cfg.Fs, path, doc, r.cfg.FileMode); err != nil {
		return r.fail(StepSVG, fmt.Errorf("writing %s: %w: %w", path, exporterrors.ErrWrite, err))
	}
	// Bundled from memory.
	r.entries = append(r.entries, bundle.Entry{Name: name, Category: bundle.CategoryStandard, Data: doc})
	r.result.record(Produced(StepSVG, path))
	return nil
}

func (r *run) writeFavicons() error {
	png, err := r.cfg.Encoders.Lookup(encoders.FormatPNG)
	if err != nil {
		return r.fail(StepFavicon, err)
	}
	assets, err := favicon.NewGenerator(r.cfg.Filter, png).Generate(r.src.Image)
	if err != nil {
		return r.fail(StepFavicon, fmt.Errorf("%w: %w", exporterrors.ErrEncode, err))
	}

	paths := make([]string, 0, len(assets))
	for _, a := range assets {
		path, err := r.writeFile(a.Name, bundle.CategoryFavicon, a.Data)
		if err != nil {
			r.result.Outputs = append(r.result.Outputs, paths...)
			return r.fail(StepFavicon, err)
		}
		paths = append(paths, path)
	}
	r.result.record(Produced(StepFavicon, paths...))
	return nil
}

func (r *run) writeArchive() error {
	opts := r.cfg.Archive
	opts.Stem = r.result.Stem
	opts.SourceName = r.result.Source
	opts.Created = r.cfg.Clock()

	w, err := bundle.NewWriter(r.cfg.Fs, r.logger, opts)
	if err != nil {
		return r.fail(StepArchive, fmt.Errorf("%w: %w", exporterrors.ErrArchive, err))
	}
	manifest, err := w.Write(r.outputPath(r.result.Stem+ArchiveSuffix), r.entries)
	if err != nil {
		return r.fail(StepArchive, err)
	}
	r.result.Archive = manifest.Path
	r.result.ArchiveEntries = manifest.Entries
	r.result.record(Produced(StepArchive, manifest.Path))
	return nil
}
