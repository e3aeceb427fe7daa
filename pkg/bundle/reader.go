package bundle

import (
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// maxEntrySize bounds a single decompressed entry.
const maxEntrySize = 1 << 30

// EntryInfo describes an archive member.
type EntryInfo struct {
	Name             string
	Method           uint16
	CompressedSize   uint64
	UncompressedSize uint64
}

// Archive is an opened export archive.
type Archive struct {
	file  afero.File
	zr    *zip.Reader
	index map[string]*zip.File
}

// Open opens the archive at path on fs.
func Open(fs afero.Fs, path string) (*Archive, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, exporterrors.ErrArchive, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w: %w", path, exporterrors.ErrArchive, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading %s: %w: %w", path, exporterrors.ErrArchive, err)
	}
	registerDecompressors(zr)

	index := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		index[zf.Name] = zf
	}
	return &Archive{file: f, zr: zr, index: index}, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.file.Close()
}

// Entries lists the members in archive order.
func (a *Archive) Entries() []EntryInfo {
	out := make([]EntryInfo, 0, len(a.zr.File))
	for _, zf := range a.zr.File {
		out = append(out, EntryInfo{
			Name:             zf.Name,
			Method:           zf.Method,
			CompressedSize:   zf.CompressedSize64,
			UncompressedSize: zf.UncompressedSize64,
		})
	}
	return out
}

// Names returns the member names, sorted.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.index))
	for name := range a.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadEntry returns the decompressed bytes of name.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	zf, ok := a.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: no entry %s", exporterrors.ErrArchive, name)
	}
	if zf.UncompressedSize64 > maxEntrySize {
		return nil, fmt.Errorf("%w: entry %s too large: %d", exporterrors.ErrArchive, name, zf.UncompressedSize64)
	}

	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w: %w", name, exporterrors.ErrArchive, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w: %w", name, exporterrors.ErrArchive, err)
	}
	return data, nil
}
