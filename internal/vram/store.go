package vram

import "encoding/binary"

// VRAM dimensions in 16-bit pixels.
const (
	Width  = 1024
	Height = 512
)

// Store is a software VRAM: the host-side implementation of the
// pixel/palette upload primitive, addressable by the same page and CLUT
// selectors the hardware uses. The rasterizer samples textures from it.
type Store struct {
	pix []uint16
}

func NewStore() *Store {
	return &Store{pix: make([]uint16, Width*Height)}
}

// Upload copies little-endian 16-bit pixel data into a rectangle.
// Short source data fills what it covers; excess is ignored.
func (s *Store) Upload(data []byte, r Rect) {
	n := 0
	for y := int(r.Y); y < int(r.Y)+int(r.H); y++ {
		for x := int(r.X); x < int(r.X)+int(r.W); x++ {
			if n+2 > len(data) {
				return
			}
			if x >= 0 && x < Width && y >= 0 && y < Height {
				s.pix[y*Width+x] = binary.LittleEndian.Uint16(data[n:])
			}
			n += 2
		}
	}
}

// Pix returns the raw 16-bit value at a VRAM coordinate.
func (s *Store) Pix(x, y int) uint16 {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0
	}
	return s.pix[y*Width+x]
}

// Sample fetches one texel through a page/CLUT selector pair, the way
// the GPU resolves a textured primitive: the page selects a 256×256
// texel window, u/v index into it at the page's pixel depth, and the
// resulting index is looked up in the CLUT row. Returns the raw 15-bit
// color (with STP in bit 15).
func (s *Store) Sample(tpage, clut uint16, u, v uint8) uint16 {
	pageX := int(tpage&0xF) * 64
	pageY := int(tpage>>4&1) * 256
	depth := tpage >> 7 & 3

	y := pageY + int(v)
	var idx int
	switch depth {
	case 0: // 4-bit: four texels per VRAM pixel
		w := s.Pix(pageX+int(u)/4, y)
		idx = int(w>>(uint(u%4)*4)) & 0xF
	case 1: // 8-bit: two texels per VRAM pixel
		w := s.Pix(pageX+int(u)/2, y)
		idx = int(w>>(uint(u%2)*8)) & 0xFF
	default: // 15-bit direct
		return s.Pix(pageX+int(u), y)
	}

	clutX := int(clut&0x3F) * 16
	clutY := int(clut >> 6)
	return s.Pix(clutX+idx, clutY)
}

// RGB expands a 15-bit VRAM color to 8-bit channels. ok is false for
// the fully transparent value 0x0000.
func RGB(c uint16) (r, g, b uint8, ok bool) {
	if c == 0 {
		return 0, 0, 0, false
	}
	r5 := uint8(c & 0x1F)
	g5 := uint8(c >> 5 & 0x1F)
	b5 := uint8(c >> 10 & 0x1F)
	return r5<<3 | r5>>2, g5<<3 | g5>>2, b5<<3 | b5>>2, true
}
