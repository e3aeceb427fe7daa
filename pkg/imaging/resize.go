package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Filter names a resampling algorithm.
type Filter string

const (
	// Lanczos3 is Lanczos resampling with a=3 (sharpest, default).
	Lanczos3 Filter = "lanczos3"
	// Lanczos2 is Lanczos resampling with a=2.
	Lanczos2 Filter = "lanczos2"
	// MitchellNetravali is the Mitchell-Netravali cubic (B=C=1/3).
	MitchellNetravali Filter = "mitchell"
	// Bicubic is bicubic interpolation.
	Bicubic Filter = "bicubic"
	// Bilinear is bilinear interpolation.
	Bilinear Filter = "bilinear"
	// NearestNeighbor copies the closest source pixel.
	NearestNeighbor Filter = "nearest"
	// CatmullRom is the Catmull-Rom cubic from x/image/draw.
	CatmullRom Filter = "catmullrom"
	// ApproxBiLinear is the fast bilinear approximation from x/image/draw.
	ApproxBiLinear Filter = "approxbilinear"
)

// DefaultFilter is used for favicon variants unless configured otherwise.
const DefaultFilter = Lanczos3

var nfntFilters = map[Filter]resize.InterpolationFunction{
	Lanczos3:          resize.Lanczos3,
	Lanczos2:          resize.Lanczos2,
	MitchellNetravali: resize.MitchellNetravali,
	Bicubic:           resize.Bicubic,
	Bilinear:          resize.Bilinear,
	NearestNeighbor:   resize.NearestNeighbor,
}

var drawScalers = map[Filter]xdraw.Scaler{
	CatmullRom:     xdraw.CatmullRom,
	ApproxBiLinear: xdraw.ApproxBiLinear,
}

// Filters lists every supported filter name.
func Filters() []Filter {
	return []Filter{Lanczos3, Lanczos2, MitchellNetravali, Bicubic, Bilinear, NearestNeighbor, CatmullRom, ApproxBiLinear}
}

// ParseFilter resolves a filter name, case-insensitively. An empty name
// selects DefaultFilter.
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultFilter, nil
	}
	f := Filter(name)
	if _, ok := nfntFilters[f]; ok {
		return f, nil
	}
	if _, ok := drawScalers[f]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown resample filter: %s", name)
}

// Resize returns a new width×height image resampled from img. The source is
// never modified, so several sizes can be derived from the same canonical
// image.
func Resize(img image.Image, width, height int, filter Filter) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}
	if filter == "" {
		filter = DefaultFilter
	}

	if interp, ok := nfntFilters[filter]; ok {
		return resize.Resize(uint(width), uint(height), img, interp), nil
	}

	if scaler, ok := drawScalers[filter]; ok {
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		return dst, nil
	}

	return nil, fmt.Errorf("unknown resample filter: %s", filter)
}
