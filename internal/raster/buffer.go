package raster

import "image"

// FrameBuffer is the host render target as a flat NRGBA slice for cache
// locality.
type FrameBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

// NewFrameBuffer allocates a transparent framebuffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
	}
}

// Clear fills the framebuffer with an opaque color, the host equivalent
// of the per-frame FastFill clear.
func (fb *FrameBuffer) Clear(r, g, b uint8) {
	for i := 0; i < len(fb.Pix); i += 4 {
		fb.Pix[i] = r
		fb.Pix[i+1] = g
		fb.Pix[i+2] = b
		fb.Pix[i+3] = 255
	}
}

// Image copies the framebuffer into an image.NRGBA.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Pix)
	return img
}
