// Package imaging decodes source rasters and provides the pixel
// transformations the exporter needs: color-mode normalization, alpha
// flattening and resampling.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF sources
	_ "image/jpeg" // JPEG sources
	_ "image/png"  // PNG sources
	"io"
	"path/filepath"
	"strings"

	_ "github.com/gen2brain/avif" // AVIF sources
	_ "github.com/gen2brain/webp" // WebP sources
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp" // BMP sources
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF sources

	exporterrors "github.com/provide-io/imgexport/pkg/export/errors"
)

// ColorMode names the channel layout of a normalized source.
type ColorMode string

const (
	// ModeRGB is plain color without an alpha channel.
	ModeRGB ColorMode = "RGB"
	// ModeRGBA is color with an alpha channel.
	ModeRGBA ColorMode = "RGBA"
)

// SourceImage is a decoded, normalized source raster.
type SourceImage struct {
	// Path is the file the image was decoded from.
	Path string
	// Format is the decoder name reported by image.Decode (png, jpeg, ...).
	Format string
	// Mode is the channel layout after normalization.
	Mode ColorMode
	// Image holds the pixels. It must not be modified.
	Image image.Image
}

// Width returns the pixel width.
func (s *SourceImage) Width() int { return s.Image.Bounds().Dx() }

// Height returns the pixel height.
func (s *SourceImage) Height() int { return s.Image.Bounds().Dy() }

// Stem returns the source filename without directory and extension.
func (s *SourceImage) Stem() string { return Stem(s.Path) }

// Stem returns the filename of path without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base // dotfiles like ".logo" keep their full name
}

// Open reads and decodes the image at path from fs.
func Open(fs afero.Fs, path string) (*SourceImage, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %w", path, exporterrors.ErrDecode, err)
	}
	defer f.Close()

	src, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.Path = path
	return src, nil
}

// Decode decodes r with any registered decoder and normalizes the result.
func Decode(r io.Reader) (*SourceImage, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w: %w", exporterrors.ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decoding image: %w: empty bounds", exporterrors.ErrDecode)
	}

	normalized, mode := Normalize(img)
	return &SourceImage{
		Format: format,
		Mode:   mode,
		Image:  normalized,
	}, nil
}

// DecodeConfig reads the format and dimensions of an encoded image without
// decoding its pixels.
func DecodeConfig(r io.Reader) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("reading image header: %w: %w", exporterrors.ErrDecode, err)
	}
	return cfg, format, nil
}

// Normalize keeps plain-color and color-with-alpha images as they are and
// converts everything else: to NRGBA when the source carries an alpha
// channel, to opaque RGBA otherwise.
func Normalize(img image.Image) (image.Image, ColorMode) {
	switch m := img.(type) {
	case *image.NRGBA:
		return m, ModeRGBA
	case *image.RGBA:
		// PNG truecolor without tRNS decodes to *image.RGBA.
		if m.Opaque() {
			return m, ModeRGB
		}
		return m, ModeRGBA
	case *image.YCbCr:
		return m, ModeRGB
	}

	bounds := img.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	if HasAlphaChannel(img) {
		dst := image.NewNRGBA(rect)
		xdraw.Draw(dst, rect, img, bounds.Min, xdraw.Src)
		return dst, ModeRGBA
	}
	dst := image.NewRGBA(rect)
	xdraw.Draw(dst, rect, img, bounds.Min, xdraw.Src)
	return dst, ModeRGB
}

// HasAlphaChannel reports whether the color model of img carries alpha.
func HasAlphaChannel(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	case *image.RGBA:
		return !m.Opaque()
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}

	switch img.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.RGBA64Model,
		color.NYCbCrAModel, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
