// Package verify checks an export archive: every entry must decode as its
// extension says, the SVG must embed a PNG of its declared size, favicons
// must carry their fixed sizes, and entries can be compared to the files on
// disk.
package verify

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	ico "github.com/sergeymakinen/go-ico"
	"github.com/spf13/afero"

	"github.com/provide-io/imgexport/pkg/bundle"
	"github.com/provide-io/imgexport/pkg/favicon"
	"github.com/provide-io/imgexport/pkg/imaging"
	"github.com/provide-io/imgexport/pkg/svg"
)

// extensionFormats maps entry extensions to decoder names.
var extensionFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".webp": "webp",
	".avif": "avif",
}

// Options configures a verification run.
type Options struct {
	// Against, when set, is the directory whose files must match the
	// archive entries byte for byte.
	Against string
}

// EntryReport is the outcome for one archive member.
type EntryReport struct {
	Name     string
	Size     int
	Checksum string
	Format   string
	Width    int
	Height   int
	// Frames lists ICO frame sizes.
	Frames []int
	Err    error
}

// Report collects the outcome for an archive.
type Report struct {
	Archive string
	Entries []EntryReport
	Errors  []string
}

// Passed reports whether no check failed.
func (r *Report) Passed() bool {
	return len(r.Errors) == 0
}

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Verifier checks archives on a filesystem.
type Verifier struct {
	fs     afero.Fs
	logger hclog.Logger
}

// New creates a Verifier.
func New(fs afero.Fs, logger hclog.Logger) *Verifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Verifier{fs: fs, logger: logger.Named("verify")}
}

// Verify checks the archive at archivePath. The error is only non-nil when
// the archive cannot be opened; failed checks are listed in the report.
func (v *Verifier) Verify(archivePath string, opts Options) (*Report, error) {
	archive, err := bundle.Open(v.fs, archivePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := archive.Close(); err != nil {
			v.logger.Debug("Failed to close archive", "error", err)
		}
	}()

	v.logger.Info("Verifying archive", "path", archivePath)
	report := &Report{Archive: archivePath}

	infos := archive.Entries()
	if len(infos) == 0 {
		report.fail("archive has no entries")
	}

	for _, info := range infos {
		entry := EntryReport{Name: info.Name}
		data, err := archive.ReadEntry(info.Name)
		if err == nil {
			entry.Size = len(data)
			entry.Checksum = Checksum(ChecksumSHA256, data)
			err = checkEntry(&entry, data)
		}
		if err == nil && opts.Against != "" {
			err = v.compare(opts.Against, info.Name, data)
		}

		if err != nil {
			entry.Err = err
			report.fail("%s: %v", info.Name, err)
			v.logger.Error("Entry verification failed", "name", info.Name, "error", err)
		} else {
			v.logger.Info("✓ Entry valid", "name", info.Name, "checksum", entry.Checksum)
		}
		report.Entries = append(report.Entries, entry)
	}

	if report.Passed() {
		v.logger.Info("✓ Archive verification passed", "entries", len(report.Entries))
	} else {
		v.logger.Error("✗ Archive verification failed", "error_count", len(report.Errors))
		for _, e := range report.Errors {
			v.logger.Error("  Verification error", "details", e)
		}
	}
	return report, nil
}

func (v *Verifier) compare(dir, name string, data []byte) error {
	if path.Base(name) == bundle.ReadmeName {
		return nil
	}
	onDisk, err := afero.ReadFile(v.fs, filepath.Join(dir, path.Base(name)))
	if err != nil {
		return fmt.Errorf("reading counterpart: %w", err)
	}
	if err := VerifyChecksum(onDisk, Checksum(ChecksumSHA256, data)); err != nil {
		return fmt.Errorf("differs from %s: %w", filepath.Join(dir, path.Base(name)), err)
	}
	return nil
}

func checkEntry(entry *EntryReport, data []byte) error {
	base := path.Base(entry.Name)
	ext := strings.ToLower(path.Ext(base))

	switch {
	case base == bundle.ReadmeName:
		entry.Format = "text"
		return nil
	case ext == ".svg":
		return checkSVG(entry, data)
	case ext == ".ico":
		return checkICO(entry, data)
	}

	want, ok := extensionFormats[ext]
	if !ok {
		return fmt.Errorf("unexpected entry type %q", ext)
	}
	cfg, format, err := imaging.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	entry.Format, entry.Width, entry.Height = format, cfg.Width, cfg.Height
	if format != want {
		return fmt.Errorf("extension %s but content is %s", ext, format)
	}

	for _, variant := range favicon.PNGVariants {
		if base == variant.Name && (cfg.Width != variant.Size || cfg.Height != variant.Size) {
			return fmt.Errorf("expected %dx%d, got %dx%d", variant.Size, variant.Size, cfg.Width, cfg.Height)
		}
	}
	return nil
}

func checkSVG(entry *EntryReport, data []byte) error {
	entry.Format = "svg"
	doc, err := svg.Parse(data)
	if err != nil {
		return err
	}
	entry.Width, entry.Height = doc.Width, doc.Height

	cfg, format, err := imaging.DecodeConfig(bytes.NewReader(doc.PNG))
	if err != nil {
		return fmt.Errorf("embedded image: %w", err)
	}
	if format != "png" {
		return fmt.Errorf("embedded image is %s, not png", format)
	}
	if cfg.Width != doc.Width || cfg.Height != doc.Height {
		return fmt.Errorf("declares %dx%d but embeds %dx%d", doc.Width, doc.Height, cfg.Width, cfg.Height)
	}
	return nil
}

func checkICO(entry *EntryReport, data []byte) error {
	entry.Format = "ico"
	frames, err := ico.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding ico: %w", err)
	}
	for _, f := range frames {
		b := f.Bounds()
		if b.Dx() != b.Dy() {
			return fmt.Errorf("frame %dx%d is not square", b.Dx(), b.Dy())
		}
		entry.Frames = append(entry.Frames, b.Dx())
	}
	sort.Ints(entry.Frames)

	if path.Base(entry.Name) == favicon.ICOName && !slices.Equal(entry.Frames, favicon.ICOSizes) {
		return fmt.Errorf("expected frames %v, got %v", favicon.ICOSizes, entry.Frames)
	}
	return nil
}
