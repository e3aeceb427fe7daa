package imaging

import (
	"image"
	"image/color"
)

// Flatten drops the alpha channel of img. Stored color values are kept as
// they are (not composited onto a background) and every pixel becomes fully
// opaque. Images that are already opaque are returned unchanged.
func Flatten(img image.Image) image.Image {
	if !HasAlphaChannel(img) {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < bounds.Dy(); y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			srcRow := src.Pix[off : off+bounds.Dx()*4]
			dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+bounds.Dx()*4]
			for i := 0; i < len(srcRow); i += 4 {
				dstRow[i] = srcRow[i]
				dstRow[i+1] = srcRow[i+1]
				dstRow[i+2] = srcRow[i+2]
				dstRow[i+3] = 0xff
			}
		}
		return dst
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
