package encoders

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

func init() {
	Register(FormatJPEG, func(s Settings) Encoder {
		return NewJPEGEncoder(s.JPEGQuality)
	})
}

// JPEGEncoder writes baseline JPEG. Alpha is ignored by the format, so
// callers flatten first to control which color values end up in the file.
type JPEGEncoder struct {
	BaseEncoder
	Quality int
}

// NewJPEGEncoder creates a JPEG encoder
func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{
		BaseEncoder: BaseEncoder{
			FormatName: FormatJPEG,
			Ext:        "jpg",
		},
		Quality: quality,
	}
}

// Encode writes img as JPEG
func (e *JPEGEncoder) Encode(w io.Writer, img image.Image) error {
	if e.Quality < 1 || e.Quality > 100 {
		return fmt.Errorf("jpeg quality out of range: %d", e.Quality)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: e.Quality})
}
