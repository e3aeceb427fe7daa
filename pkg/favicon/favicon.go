// Package favicon derives browser and home-screen icons from a source image.
package favicon

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/tc-hib/winres"

	"github.com/provide-io/imgexport/pkg/encoders"
	"github.com/provide-io/imgexport/pkg/imaging"
)

// Output filenames
const (
	ICOName       = "favicon.ico"
	TouchIconName = "apple-touch-icon.png"
)

// ICOSizes are the frames combined into favicon.ico.
var ICOSizes = []int{16, 32, 48}

// PNGVariant is a single square PNG icon.
type PNGVariant struct {
	Name string
	Size int
}

// PNGVariants are written next to favicon.ico.
var PNGVariants = []PNGVariant{
	{Name: TouchIconName, Size: 180},
	{Name: "favicon-192x192.png", Size: 192},
	{Name: "favicon-512x512.png", Size: 512},
}

// Names returns every filename Generate produces, in order.
func Names() []string {
	names := []string{ICOName}
	for _, v := range PNGVariants {
		names = append(names, v.Name)
	}
	return names
}

// Asset is one generated icon file.
type Asset struct {
	Name string
	// Sizes lists the square frame sizes stored in the file.
	Sizes []int
	Data  []byte
}

// Generator renders favicon assets.
type Generator struct {
	Filter imaging.Filter
	PNG    encoders.Encoder
}

// NewGenerator creates a generator resampling with filter and writing PNG
// frames with png.
func NewGenerator(filter imaging.Filter, png encoders.Encoder) *Generator {
	return &Generator{Filter: filter, PNG: png}
}

// Generate derives the ICO and every PNG variant from src. Each size is
// resampled from src directly, never from another variant.
func (g *Generator) Generate(src image.Image) ([]Asset, error) {
	assets := make([]Asset, 0, 1+len(PNGVariants))

	frames := make([]image.Image, 0, len(ICOSizes))
	for _, size := range ICOSizes {
		frame, err := imaging.Resize(src, size, size, g.Filter)
		if err != nil {
			return nil, fmt.Errorf("resizing ico frame %d: %w", size, err)
		}
		frames = append(frames, frame)
	}
	var ico bytes.Buffer
	if err := EncodeICO(&ico, frames); err != nil {
		return nil, err
	}
	assets = append(assets, Asset{Name: ICOName, Sizes: append([]int(nil), ICOSizes...), Data: ico.Bytes()})

	for _, v := range PNGVariants {
		resized, err := imaging.Resize(src, v.Size, v.Size, g.Filter)
		if err != nil {
			return nil, fmt.Errorf("resizing %s: %w", v.Name, err)
		}
		var buf bytes.Buffer
		if err := g.PNG.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", v.Name, err)
		}
		assets = append(assets, Asset{Name: v.Name, Sizes: []int{v.Size}, Data: buf.Bytes()})
	}

	return assets, nil
}

// EncodeICO writes frames as a multi-resolution ICO with PNG-compressed
// entries. Frames must be at most 256 pixels on each side.
func EncodeICO(w io.Writer, frames []image.Image) error {
	if len(frames) == 0 {
		return fmt.Errorf("encoding ico: no frames")
	}
	icon, err := winres.NewIconFromImages(frames)
	if err != nil {
		return fmt.Errorf("building ico: %w", err)
	}
	if err := icon.SaveICO(w); err != nil {
		return fmt.Errorf("writing ico: %w", err)
	}
	return nil
}
