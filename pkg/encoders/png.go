package encoders

import (
	"image"
	"image/png"
	"io"
)

func init() {
	Register(FormatPNG, func(s Settings) Encoder {
		return NewPNGEncoder(s.PNGCompression)
	})
}

// PNGEncoder writes lossless PNG
type PNGEncoder struct {
	BaseEncoder
	encoder png.Encoder
}

// NewPNGEncoder creates a PNG encoder with the given compression level
func NewPNGEncoder(level png.CompressionLevel) *PNGEncoder {
	return &PNGEncoder{
		BaseEncoder: BaseEncoder{
			FormatName: FormatPNG,
			Ext:        "png",
		},
		encoder: png.Encoder{CompressionLevel: level},
	}
}

// Encode writes img as PNG
func (e *PNGEncoder) Encode(w io.Writer, img image.Image) error {
	return e.encoder.Encode(w, img)
}
