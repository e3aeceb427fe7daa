package favicon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sort"
	"testing"

	ico "github.com/sergeymakinen/go-ico"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/imgexport/pkg/encoders"
	"github.com/provide-io/imgexport/pkg/imaging"
)

func squareSource(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0x99, A: 0xff})
		}
	}
	return img
}

func TestGenerateFrom1024Square(t *testing.T) {
	gen := NewGenerator(imaging.Lanczos3, encoders.NewPNGEncoder(png.DefaultCompression))

	assets, err := gen.Generate(squareSource(1024))
	require.NoError(t, err)
	require.Len(t, assets, 4)

	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	assert.Equal(t, Names(), names)

	frames, err := ico.DecodeAll(bytes.NewReader(assets[0].Data))
	require.NoError(t, err)
	sizes := make([]int, 0, len(frames))
	for _, f := range frames {
		assert.Equal(t, f.Bounds().Dx(), f.Bounds().Dy())
		sizes = append(sizes, f.Bounds().Dx())
	}
	sort.Ints(sizes)
	assert.Equal(t, []int{16, 32, 48}, sizes)

	for i, v := range PNGVariants {
		asset := assets[i+1]
		cfg, err := png.DecodeConfig(bytes.NewReader(asset.Data))
		require.NoError(t, err, v.Name)
		assert.Equal(t, v.Size, cfg.Width, v.Name)
		assert.Equal(t, v.Size, cfg.Height, v.Name)
		assert.Equal(t, []int{v.Size}, asset.Sizes)
	}
}

func TestGenerateNonSquareIsStretched(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	gen := NewGenerator(imaging.CatmullRom, encoders.NewPNGEncoder(png.BestSpeed))

	assets, err := gen.Generate(src)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(assets[1].Data))
	require.NoError(t, err)
	assert.Equal(t, 180, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
}

func TestEncodeICORejects(t *testing.T) {
	assert.Error(t, EncodeICO(&bytes.Buffer{}, nil))
	assert.Error(t, EncodeICO(&bytes.Buffer{}, []image.Image{image.NewNRGBA(image.Rect(0, 0, 300, 300))}))
}
