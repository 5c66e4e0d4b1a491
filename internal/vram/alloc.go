// Package vram manages the PS1 video memory layout for textures and
// CLUTs, and provides a software VRAM store for host-side rasterization.
//
// VRAM is 1024×512 at 16bpp. Layout:
//
//	X=0..319,    Y=0..479:   framebuffers (2× 320×240)
//	X=0..319,    Y=480..495: FastFill danger zone (cleared every frame)
//	X=320..1023, Y=0..495:   texture pixel data (strip-packed)
//	X=0..1023,   Y=496..511: CLUT data (16 rows)
package vram

import "errors"

var (
	ErrPixelSpace = errors.New("vram: pixel region exhausted")
	ErrClutSpace  = errors.New("vram: clut region exhausted")
	ErrSlots      = errors.New("vram: slot table full")
)

const (
	MaxTextures = 32

	// Texture region: right of the framebuffers, above the CLUT rows.
	TexX0 = 320
	TexX1 = 1024
	TexY0 = 0
	TexY1 = 496

	// CLUT region: bottom 16 rows, full width.
	ClutX1 = 1024
	ClutY0 = 496
	ClutY1 = 512
)

// TexInfo is the per-slot lookup record consumed by the draw pipeline:
// hardware page/palette selectors plus texel offsets and wrap masks.
type TexInfo struct {
	TPage uint16 // page X | page Y<<4 | pixel depth<<7
	Clut  uint16 // (clut X/16) | clut Y<<6
	UOff  uint8  // texel offset of the pixel block within its page
	VOff  uint8
	UMask uint8 // texel_w-1; wraps UVs to texture bounds (power of two)
	VMask uint8
}

// Rect is a VRAM-pixel rectangle, the unit of the upload primitive.
type Rect struct {
	X, Y, W, H int16
}

// Slot records one texture's placement.
type Slot struct {
	Info  TexInfo
	VramX int16 // pixel data position
	VramY int16
	VramW int16 // pixel data size in VRAM pixels
	VramH int16
	ClutX int16
	ClutY int16
	ClutW int16 // CLUT width in VRAM pixels, 16-aligned
}

// Allocator strip-packs texture pixel blocks into the texture region
// and their CLUTs into the CLUT rows. Allocation is deterministic and
// order-dependent: Reset followed by the same Alloc sequence reproduces
// identical placements.
type Allocator struct {
	slots    [MaxTextures]Slot
	numSlots int

	// Texture strip packer cursor.
	texCurX int16
	texCurY int16
	texRowH int16

	// CLUT linear packer cursor.
	clutCurX int16
	clutCurY int16
}

func NewAllocator() *Allocator {
	a := &Allocator{}
	a.Reset()
	return a
}

// Reset empties the slot table and rewinds both packing cursors.
func (a *Allocator) Reset() {
	a.numSlots = 0
	a.texCurX = TexX0
	a.texCurY = TexY0
	a.texRowH = 0
	a.clutCurX = 0
	a.clutCurY = ClutY0
}

// Alloc places one texture's pixel block and CLUT. format is
// prm.Format4Bit or prm.Format8Bit; clutColors is the resolved palette
// entry count. Returns the slot index.
//
// A pixel block must not straddle a texture page boundary: 4-bit pages
// span 64 VRAM pixels (256 texels), 8-bit pages span 128. Page bases
// sit at multiples of 64 VRAM pixels.
func (a *Allocator) Alloc(texelW, texelH uint16, format uint8, clutColors int) (int, error) {
	if a.numSlots >= MaxTextures {
		return -1, ErrSlots
	}

	var vw int16
	if format == 0 {
		vw = int16(texelW / 4)
	} else {
		vw = int16(texelW / 2)
	}
	vh := int16(texelH)

	pageSpan := int16(64)
	if format != 0 {
		pageSpan = 128
	}
	fits := func(x int16) bool {
		return x%64+vw <= pageSpan && x+vw <= TexX1
	}

	if !fits(a.texCurX) {
		// Try the next 64-px page boundary on the same row, then wrap.
		next := (a.texCurX + 63) / 64 * 64
		if fits(next) {
			a.texCurX = next
		} else {
			a.texCurY += a.texRowH
			a.texCurX = TexX0
			a.texRowH = 0
		}
	}
	if a.texCurY+vh > TexY1 {
		return -1, ErrPixelSpace
	}

	vx, vy := a.texCurX, a.texCurY
	a.texCurX += vw
	if vh > a.texRowH {
		a.texRowH = vh
	}

	cw := int16((clutColors + 15) &^ 15)
	if a.clutCurX+cw > ClutX1 {
		a.clutCurY++
		a.clutCurX = 0
	}
	if a.clutCurY >= ClutY1 {
		return -1, ErrClutSpace
	}
	cx, cy := a.clutCurX, a.clutCurY
	a.clutCurX += cw

	s := &a.slots[a.numSlots]
	*s = Slot{
		VramX: vx, VramY: vy, VramW: vw, VramH: vh,
		ClutX: cx, ClutY: cy, ClutW: cw,
	}

	s.Info.TPage = uint16(vx/64) | uint16(vy/256)<<4 | uint16(format)<<7
	if format == 0 {
		s.Info.UOff = uint8(vx % 64 * 4)
	} else {
		s.Info.UOff = uint8(vx % 64 * 2)
	}
	s.Info.VOff = uint8(vy % 256)
	s.Info.Clut = uint16(cx/16) | uint16(cy)<<6
	s.Info.UMask = uint8(texelW - 1)
	s.Info.VMask = uint8(texelH - 1)

	idx := a.numSlots
	a.numSlots++
	return idx, nil
}

func (a *Allocator) NumSlots() int { return a.numSlots }

// Info returns the cached lookup record for a slot.
func (a *Allocator) Info(slot int) TexInfo { return a.slots[slot].Info }

// PixelRect returns the destination rectangle for the slot's pixel data.
func (a *Allocator) PixelRect(slot int) Rect {
	s := a.slots[slot]
	return Rect{X: s.VramX, Y: s.VramY, W: s.VramW, H: s.VramH}
}

// ClutRect returns the destination rectangle for the slot's CLUT row.
func (a *Allocator) ClutRect(slot int) Rect {
	s := a.slots[slot]
	return Rect{X: s.ClutX, Y: s.ClutY, W: s.ClutW, H: 1}
}
