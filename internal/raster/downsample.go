package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a supersampled frame back to the native screen
// resolution with CatmullRom filtering. Frames on the framebuffer are
// fully opaque, so no premultiply pass is needed. Frames rendered at
// scale 1 are returned unchanged.
func Downsample(img *image.NRGBA, width, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
