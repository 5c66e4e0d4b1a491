package raster

import (
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/vram"
)

// triangle rasterizes one draw record with integer edge functions.
//
// This is the hot path: no allocation in the loop. Textured records
// interpolate UVs affinely (the hardware has no perspective correction
// either), fetch the texel through the VRAM page/CLUT selectors, and
// modulate with the record color at the hardware's half-brightness
// scale (128 = neutral). Untextured records Gouraud-interpolate the
// vertex colors. Texel value 0 is fully transparent and skipped.
func (r *Renderer) triangle(fb *FrameBuffer, rec *render.DrawRecord) {
	s := int32(r.scale)
	x0, y0 := int32(rec.X[0])*s, int32(rec.Y[0])*s
	x1, y1 := int32(rec.X[1])*s, int32(rec.Y[1])*s
	x2, y2 := int32(rec.X[2])*s, int32(rec.Y[2])*s

	area := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if area == 0 {
		return
	}
	// Accept either winding: orient the edge functions by the area sign.
	swapped := false
	if area < 0 {
		x1, y1, x2, y2 = x2, y2, x1, y1
		area = -area
		swapped = true
	}

	minX := min3(x0, x1, x2)
	maxX := max3(x0, x1, x2)
	minY := min3(y0, y1, y2)
	maxY := max3(y0, y1, y2)
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX >= int32(fb.Width) {
		maxX = int32(fb.Width) - 1
	}
	if maxY >= int32(fb.Height) {
		maxY = int32(fb.Height) - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// After a swap the vertex attributes 1 and 2 swap with their
	// coordinates; track the mapping instead of copying the record.
	i1, i2 := 1, 2
	if swapped {
		i1, i2 = 2, 1
	}

	c0, c1, c2 := rec.Colors[0], rec.Colors[i1], rec.Colors[i2]
	u0, v0 := int64(rec.U[0]), int64(rec.V[0])
	u1, v1 := int64(rec.U[i1]), int64(rec.V[i1])
	u2, v2 := int64(rec.U[i2]), int64(rec.V[i2])

	a64 := int64(area)
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			w0 := (x1-px)*(y2-py) - (x2-px)*(y1-py)
			w1 := (x2-px)*(y0-py) - (x0-px)*(y2-py)
			w2 := (x0-px)*(y1-py) - (x1-px)*(y0-py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			var cr, cg, cb int64
			cr = (int64(w0)*int64(c0.R) + int64(w1)*int64(c1.R) + int64(w2)*int64(c2.R)) / a64
			cg = (int64(w0)*int64(c0.G) + int64(w1)*int64(c1.G) + int64(w2)*int64(c2.G)) / a64
			cb = (int64(w0)*int64(c0.B) + int64(w1)*int64(c1.B) + int64(w2)*int64(c2.B)) / a64

			if rec.Textured {
				u := (int64(w0)*u0 + int64(w1)*u1 + int64(w2)*u2) / a64
				v := (int64(w0)*v0 + int64(w1)*v1 + int64(w2)*v2) / a64
				texel := r.store.Sample(rec.TPage, rec.Clut, uint8(u), uint8(v))
				tr, tg, tb, ok := vram.RGB(texel)
				if !ok {
					continue
				}
				cr = int64(tr) * cr / 128
				cg = int64(tg) * cg / 128
				cb = int64(tb) * cb / 128
			}

			idx := (int(py)*fb.Width + int(px)) * 4
			fb.Pix[idx] = clamp255(cr)
			fb.Pix[idx+1] = clamp255(cg)
			fb.Pix[idx+2] = clamp255(cb)
			fb.Pix[idx+3] = 255
		}
	}
}

func clamp255(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func min3(a, b, c int32) int32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3(a, b, c int32) int32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
