package bundle

import (
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Method is the compression applied to every archive entry.
type Method string

const (
	MethodDeflate Method = "deflate"
	MethodBzip2   Method = "bzip2"
	MethodStore   Method = "store"
)

// DefaultMethod is deflate, readable by every unzip tool.
const DefaultMethod = MethodDeflate

// zipBzip2 is the APPNOTE method id for bzip2.
const zipBzip2 uint16 = 12

// ParseMethod resolves a compression method name. Empty selects
// DefaultMethod.
func ParseMethod(name string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultMethod, nil
	case MethodDeflate:
		return MethodDeflate, nil
	case MethodBzip2:
		return MethodBzip2, nil
	case MethodStore:
		return MethodStore, nil
	default:
		return "", fmt.Errorf("unknown archive method: %s", name)
	}
}

func (m Method) zipID() uint16 {
	switch m {
	case MethodBzip2:
		return zipBzip2
	case MethodStore:
		return zip.Store
	default:
		return zip.Deflate
	}
}

// registerCompressors installs the deflate (at level) and bzip2
// compressors on zw.
func registerCompressors(zw *zip.Writer, level int) {
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	zw.RegisterCompressor(zipBzip2, func(w io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: 9})
	})
}

func registerDecompressors(zr *zip.Reader) {
	zr.RegisterDecompressor(zipBzip2, func(r io.Reader) io.ReadCloser {
		br, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
		if err != nil {
			return errReadCloser{err: fmt.Errorf("creating bzip2 reader: %w", err)}
		}
		return br
	})
}

type errReadCloser struct{ err error }

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return nil }
