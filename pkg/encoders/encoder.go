package encoders

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sort"
	"strings"

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// Output format names
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
	FormatAVIF = "avif"
)

// Encoder turns an image into the bytes of one output format
type Encoder interface {
	// Format returns the format name (e.g., FormatWebP)
	Format() string

	// Extension returns the file extension, without the dot
	Extension() string

	// Available reports whether the encoder can run in this process
	Available() bool

	// Encode writes img to w
	Encode(w io.Writer, img image.Image) error
}

// BaseEncoder provides common functionality for encoders
type BaseEncoder struct {
	FormatName string
	Ext        string
}

func (e *BaseEncoder) Format() string {
	return e.FormatName
}

func (e *BaseEncoder) Extension() string {
	return e.Ext
}

func (e *BaseEncoder) Available() bool {
	return true // Most encoders are built in
}

// Settings carries the tunables every encoder reads from.
type Settings struct {
	PNGCompression png.CompressionLevel
	JPEGQuality    int
	WebPQuality    int
	WebPMethod     int
	AVIFQuality    int
	AVIFSpeed      int
}

// DefaultSettings returns the stock export parameters.
func DefaultSettings() Settings {
	return Settings{
		PNGCompression: png.BestCompression,
		JPEGQuality:    85,
		WebPQuality:    90,
		WebPMethod:     6,
		AVIFQuality:    85,
		AVIFSpeed:      6,
	}
}

// ParsePNGCompression maps a config name onto a png.CompressionLevel.
func ParsePNGCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "best":
		return png.BestCompression, nil
	case "default":
		return png.DefaultCompression, nil
	case "fast", "speed":
		return png.BestSpeed, nil
	case "none":
		return png.NoCompression, nil
	default:
		return png.BestCompression, fmt.Errorf("unknown png compression: %s", name)
	}
}

// Factory builds an encoder configured by settings
type Factory func(Settings) Encoder

// Registry maps format names to encoder factories
var Registry = make(map[string]Factory)

// Register registers an encoder factory under format
func Register(format string, factory Factory) {
	Registry[format] = factory
}

// Get retrieves an encoder factory by format name
func Get(format string) (Factory, error) {
	factory, ok := Registry[NormalizeFormat(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", exporterrors.ErrUnsupportedFormat, format)
	}
	return factory, nil
}

// NormalizeFormat folds aliases onto canonical format names.
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch format {
	case "jpg", "jpe":
		return FormatJPEG
	default:
		return format
	}
}

// Set is a collection of configured encoders keyed by format name.
type Set map[string]Encoder

// NewSet instantiates every registered encoder with settings.
func NewSet(settings Settings) Set {
	set := make(Set, len(Registry))
	for format, factory := range Registry {
		set[format] = factory(settings)
	}
	return set
}

// Lookup returns the encoder for format.
func (s Set) Lookup(format string) (Encoder, error) {
	enc, ok := s[NormalizeFormat(format)]
	if !ok || enc == nil {
		return nil, fmt.Errorf("%w: no encoder for %s", exporterrors.ErrUnsupportedFormat, format)
	}
	return enc, nil
}

// With returns a copy of s with enc registered under its format.
func (s Set) With(enc Encoder) Set {
	out := make(Set, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[enc.Format()] = enc
	return out
}

// Without returns a copy of s lacking the given formats.
func (s Set) Without(formats ...string) Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, f := range formats {
		delete(out, NormalizeFormat(f))
	}
	return out
}

// Formats lists the formats in s, sorted.
func (s Set) Formats() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
