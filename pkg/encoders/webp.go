package encoders

import (
	"fmt"
	"image"
	"io"

	"github.com/gen2brain/webp"
)

func init() {
	Register(FormatWebP, func(s Settings) Encoder {
		return NewWebPEncoder(s.WebPQuality, s.WebPMethod)
	})
}

// WebPEncoder writes lossy WebP through libwebp (shared library when
// present, embedded WASM build otherwise)
type WebPEncoder struct {
	BaseEncoder
	Quality int
	// Method is the effort level, 0 (fast) to 6 (slowest, smallest)
	Method int
}

// NewWebPEncoder creates a WebP encoder
func NewWebPEncoder(quality, method int) *WebPEncoder {
	return &WebPEncoder{
		BaseEncoder: BaseEncoder{
			FormatName: FormatWebP,
			Ext:        "webp",
		},
		Quality: quality,
		Method:  method,
	}
}

// Encode writes img as WebP
func (e *WebPEncoder) Encode(w io.Writer, img image.Image) error {
	if e.Method < 0 || e.Method > 6 {
		return fmt.Errorf("webp method out of range: %d", e.Method)
	}
	return webp.Encode(w, img, webp.Options{
		Quality: e.Quality,
		Method:  e.Method,
	})
}
