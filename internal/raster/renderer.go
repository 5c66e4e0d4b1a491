// Package raster is the host reference for the display submission
// stage: it drains a rendered frame's ordering table strictly back to
// front (painter's algorithm, no depth buffer) into a framebuffer,
// sampling textures from the software VRAM store exactly the way the
// GPU resolves page and CLUT selectors.
package raster

import (
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/vram"
)

// Renderer draws frames at an integer multiple of the 320×240 native
// resolution; supersampled output is meant to be downsampled afterwards.
type Renderer struct {
	store *vram.Store
	scale int
}

func NewRenderer(store *vram.Store, scale int) *Renderer {
	if scale < 1 {
		scale = 1
	}
	return &Renderer{store: store, scale: scale}
}

// FrameBuffer allocates a framebuffer matching the renderer's scale.
func (r *Renderer) FrameBuffer() *FrameBuffer {
	return NewFrameBuffer(render.ScreenW*r.scale, render.ScreenH*r.scale)
}

// Draw clears the framebuffer and composites every draw record of the
// frame in submission order: farthest bucket first, insertion order
// within a bucket.
func (r *Renderer) Draw(fb *FrameBuffer, f *render.Frame, clearR, clearG, clearB uint8) {
	fb.Clear(clearR, clearG, clearB)
	f.Walk(func(rec *render.DrawRecord) {
		r.triangle(fb, rec)
	})
}
