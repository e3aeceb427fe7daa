// Package bundle packs exported files into the <stem>_web_images.zip
// archive and reads such archives back for verification.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// Entry is one file to add to the archive. Data wins over Path when both
// are set.
type Entry struct {
	// Name is the base filename inside the archive.
	Name     string
	Category Category
	// Path is read from the filesystem when Data is nil.
	Path string
	Data []byte
}

// Options configures a Writer.
type Options struct {
	Layout Layout
	Method Method
	// Level is the deflate level, -2 (Huffman only) to 9.
	Level int
	// Stem prefixes entries in the structured layout.
	Stem string
	// SourceName and Created are recorded in the README.
	SourceName string
	Created    time.Time
	FileMode   os.FileMode
}

// DefaultOptions returns flat deflate at best compression.
func DefaultOptions() Options {
	return Options{
		Layout:   DefaultLayout,
		Method:   DefaultMethod,
		Level:    flate.BestCompression,
		FileMode: 0o644,
	}
}

// Manifest records what was written.
type Manifest struct {
	Path    string
	Entries []string
	Size    int64
}

// Writer builds archives on a filesystem.
type Writer struct {
	fs     afero.Fs
	logger hclog.Logger
	opts   Options
}

// NewWriter creates a Writer.
func NewWriter(fs afero.Fs, logger hclog.Logger, opts Options) (*Writer, error) {
	if opts.Level < flate.HuffmanOnly || opts.Level > flate.BestCompression {
		return nil, fmt.Errorf("invalid deflate level: %d", opts.Level)
	}
	if opts.Layout == "" {
		opts.Layout = DefaultLayout
	}
	if opts.Method == "" {
		opts.Method = DefaultMethod
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	if opts.Created.IsZero() {
		opts.Created = time.Now()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Writer{fs: fs, logger: logger.Named("bundle"), opts: opts}, nil
}

// Write creates the archive at path holding entries. A failure leaves no
// archive behind.
func (w *Writer) Write(path string, entries []Entry) (manifest *Manifest, err error) {
	w.logger.Debug("writing archive", "path", path, "entries", len(entries),
		"layout", w.opts.Layout, "method", w.opts.Method)

	f, err := w.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, w.opts.FileMode)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w: %w", path, exporterrors.ErrArchive, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w: %w", path, exporterrors.ErrArchive, cerr)
		}
		if err != nil {
			manifest = nil
			_ = w.fs.Remove(path)
		}
	}()

	zw := zip.NewWriter(f)
	registerCompressors(zw, w.opts.Level)

	names, err := w.writeEntries(zw, entries)
	if err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("%w: %w", exporterrors.ErrArchive, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing %s: %w: %w", path, exporterrors.ErrArchive, err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w: %w", path, exporterrors.ErrArchive, err)
	}

	w.logger.Info("archive written", "path", path, "entries", len(names), "bytes", info.Size())
	return &Manifest{Path: path, Entries: names, Size: info.Size()}, nil
}

func (w *Writer) writeEntries(zw *zip.Writer, entries []Entry) ([]string, error) {
	seen := make(map[string]bool, len(entries)+1)
	names := make([]string, 0, len(entries)+1)

	add := func(name string, data []byte) error {
		if seen[name] {
			return fmt.Errorf("duplicate entry %s", name)
		}
		seen[name] = true
		if err := w.addEntry(zw, name, data); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	}

	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("entry without a name")
		}
		data := e.Data
		if data == nil {
			var err error
			data, err = afero.ReadFile(w.fs, e.Path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", e.Path, err)
			}
		}
		name := w.opts.Layout.EntryName(w.opts.Stem, e.Category, e.Name)
		if err := add(name, data); err != nil {
			return nil, err
		}
	}

	if w.opts.Layout == LayoutStructured {
		if err := add(ReadmeName, Readme(w.opts, entries)); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (w *Writer) addEntry(zw *zip.Writer, name string, data []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   w.opts.Method.zipID(),
		Modified: w.opts.Created,
	}
	header.SetMode(w.opts.FileMode)

	ew, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := ew.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.logger.Trace("entry added", "name", name, "bytes", len(data))
	return nil
}

// Readme renders the README.txt describing the structured layout.
func Readme(opts Options, entries []Entry) []byte {
	var b strings.Builder
	source := opts.SourceName
	if source == "" {
		source = opts.Stem
	}
	fmt.Fprintf(&b, "Web image export: %s\n", filepath.Base(source))
	fmt.Fprintf(&b, "Generated: %s\n\n", opts.Created.Format("2006-01-02 15:04:05"))
	b.WriteString("Layout:\n")

	for _, c := range []struct {
		category Category
		about    string
	}{
		{CategoryStandard, "PNG, JPEG and SVG"},
		{CategoryWeb, "WebP and AVIF"},
		{CategoryFavicon, "favicon.ico and touch icons"},
	} {
		var files []string
		for _, e := range entries {
			cat := e.Category
			if cat == "" {
				cat = CategoryStandard
			}
			if cat == c.category {
				files = append(files, e.Name)
			}
		}
		if len(files) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s/%s/  %s\n", opts.Stem, c.category, c.about)
		for _, name := range files {
			fmt.Fprintf(&b, "    %s\n", name)
		}
	}
	return []byte(b.String())
}
