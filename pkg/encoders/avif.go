package encoders

import (
	"image"
	"io"

	"github.com/gen2brain/avif"
)

func init() {
	Register(FormatAVIF, func(s Settings) Encoder {
		return NewAVIFEncoder(s.AVIFQuality, s.AVIFSpeed)
	})
}

// AVIFEncoder writes AVIF through libavif (shared library when present,
// embedded WASM build otherwise)
type AVIFEncoder struct {
	BaseEncoder
	Quality int
	Speed   int
}

// NewAVIFEncoder creates an AVIF encoder
func NewAVIFEncoder(quality, speed int) *AVIFEncoder {
	return &AVIFEncoder{
		BaseEncoder: BaseEncoder{
			FormatName: FormatAVIF,
			Ext:        "avif",
		},
		Quality: quality,
		Speed:   speed,
	}
}

// Encode writes img as AVIF; alpha is encoded at the same quality as color
func (e *AVIFEncoder) Encode(w io.Writer, img image.Image) error {
	return avif.Encode(w, img, avif.Options{
		Quality:      e.Quality,
		QualityAlpha: e.Quality,
		Speed:        e.Speed,
	})
}
