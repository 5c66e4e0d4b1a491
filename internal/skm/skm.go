// Package skm reads SKM v1 skeletal meshes: limb-partitioned geometry,
// keyframed animations and a packed texture section.
//
// Layout (little-endian, 4-byte aligned):
//
//	Header         20 bytes
//	LimbDesc[]     num_limbs * 12 bytes
//	Mesh data      (at mesh_start, per limb sequential)
//	  Per limb:    positions[nv*8] | colors[nv*4] | uvs[nv*2 padded] | tris[nt*4]
//	Anim section   (at anim_start)
//	  AnimDesc[]   num_anims * 8 bytes
//	  Frame data   (contiguous, 134 bytes per frame)
//	Texture section (at tex_start, same layout as PRM)
//
// The skeleton is a child/sibling tree over flat limb indices, 0xFF
// meaning "no link". Limb 0 is the root. Keyframe rotations are s16
// binary-angle Euler triples stored (x, y, z) and applied Z·Y·X; each
// frame ends with an auxiliary face (eye/mouth) index.
package skm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"psx-room-renderer/internal/prm"
)

var (
	ErrBadMagic  = errors.New("skm: bad magic")
	ErrTruncated = errors.New("skm: buffer truncated")
)

const (
	headerSize   = 20
	limbDescSize = 12
	animDescSize = 8

	// MaxLimbs is fixed by the 134-byte frame layout:
	// root(6) + 21 rotations(126) + face(2).
	MaxLimbs  = 21
	FrameSize = 6 + MaxLimbs*6 + 2

	// NoLink is the child/sibling sentinel for "no link".
	NoLink = 0xFF
)

var magic = [4]byte{'S', 'K', 'M', 1}

// Header is the decoded SKM file header.
type Header struct {
	NumLimbs    int
	NumAnims    int
	NumTextures int
	MeshStart   uint32
	AnimStart   uint32
	TexStart    uint32
}

// LimbDesc describes one limb: the joint offset from its parent joint
// and the two tree links.
type LimbDesc struct {
	JointX, JointY, JointZ int16
	Child, Sibling         uint8
	NumVerts, NumTris      int
}

// AnimDesc describes one animation. Flags bit 0 marks it looping;
// non-looping animations clamp to their final frame.
type AnimDesc struct {
	FrameCount int
	Flags      uint8
	DataOffset uint32
}

// Loop reports whether the animation wraps back to frame zero.
func (a AnimDesc) Loop() bool { return a.Flags&1 != 0 }

// Mesh is a loaded SKM blob: zero-copy views plus the limb offset cache
// built once at load so per-limb lookup never rescans prior limbs.
type Mesh struct {
	Header Header

	data    []byte
	limbs   []LimbDesc
	anims   []AnimDesc
	offsets [MaxLimbs]uint32 // per-limb byte offset from MeshStart
	texs    []prm.TexDesc
	texDat  []byte
}

// Load validates an SKM buffer and returns a zero-copy view over it.
func Load(buf []byte) (*Mesh, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(buf))
	}
	if [4]byte(buf[0:4]) != magic {
		return nil, ErrBadMagic
	}

	h := Header{
		NumLimbs:    int(buf[4]),
		NumAnims:    int(buf[5]),
		NumTextures: int(binary.LittleEndian.Uint16(buf[6:])),
		MeshStart:   binary.LittleEndian.Uint32(buf[8:]),
		AnimStart:   binary.LittleEndian.Uint32(buf[12:]),
		TexStart:    binary.LittleEndian.Uint32(buf[16:]),
	}
	if h.NumLimbs > MaxLimbs {
		return nil, fmt.Errorf("skm: %d limbs exceeds frame layout cap %d", h.NumLimbs, MaxLimbs)
	}

	descEnd := headerSize + h.NumLimbs*limbDescSize
	if descEnd > len(buf) {
		return nil, fmt.Errorf("%w: limb table", ErrTruncated)
	}

	m := &Mesh{Header: h, data: buf, limbs: make([]LimbDesc, h.NumLimbs)}
	for i := range m.limbs {
		off := headerSize + i*limbDescSize
		m.limbs[i] = LimbDesc{
			JointX:   int16(binary.LittleEndian.Uint16(buf[off:])),
			JointY:   int16(binary.LittleEndian.Uint16(buf[off+2:])),
			JointZ:   int16(binary.LittleEndian.Uint16(buf[off+4:])),
			Child:    buf[off+6],
			Sibling:  buf[off+7],
			NumVerts: int(binary.LittleEndian.Uint16(buf[off+8:])),
			NumTris:  int(binary.LittleEndian.Uint16(buf[off+10:])),
		}
	}

	// Walk the child/sibling links from the root and reject any limb
	// reached twice or linked out of range; a cycle here would hang
	// pose traversal.
	if h.NumLimbs > 0 {
		var seen [MaxLimbs]bool
		stack := make([]uint8, 0, MaxLimbs)
		stack = append(stack, 0)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if int(i) >= h.NumLimbs {
				return nil, fmt.Errorf("skm: limb link %d out of range", i)
			}
			if seen[i] {
				return nil, fmt.Errorf("skm: limb %d linked twice", i)
			}
			seen[i] = true
			if s := m.limbs[i].Sibling; s != NoLink {
				stack = append(stack, s)
			}
			if c := m.limbs[i].Child; c != NoLink {
				stack = append(stack, c)
			}
		}
	}

	// Offset cache: one accumulation pass at load replaces the O(n²)
	// rescans a naive per-limb lookup would cost every frame.
	var off uint32
	for i, l := range m.limbs {
		m.offsets[i] = off
		off += uint32(prm.BlockSize(l.NumVerts, l.NumTris))
	}
	if int(h.MeshStart)+int(off) > len(buf) {
		return nil, fmt.Errorf("%w: limb mesh data", ErrTruncated)
	}

	animTableEnd := int(h.AnimStart) + h.NumAnims*animDescSize
	if animTableEnd > len(buf) {
		return nil, fmt.Errorf("%w: anim table", ErrTruncated)
	}
	m.anims = make([]AnimDesc, h.NumAnims)
	for i := range m.anims {
		o := int(h.AnimStart) + i*animDescSize
		m.anims[i] = AnimDesc{
			FrameCount: int(binary.LittleEndian.Uint16(buf[o:])),
			Flags:      buf[o+2],
			DataOffset: binary.LittleEndian.Uint32(buf[o+4:]),
		}
		a := m.anims[i]
		if a.FrameCount == 0 {
			return nil, fmt.Errorf("skm: anim %d has no frames", i)
		}
		end := animTableEnd + int(a.DataOffset) + a.FrameCount*FrameSize
		if end > len(buf) {
			return nil, fmt.Errorf("%w: anim %d frames", ErrTruncated, i)
		}
	}

	texs, texDat, err := prm.LoadTexSection(buf, int(h.TexStart), h.NumTextures)
	if err != nil {
		return nil, fmt.Errorf("skm: %w", err)
	}
	m.texs, m.texDat = texs, texDat

	return m, nil
}

func (m *Mesh) NumLimbs() int             { return len(m.limbs) }
func (m *Mesh) Limb(i int) LimbDesc       { return m.limbs[i] }
func (m *Mesh) NumAnims() int             { return len(m.anims) }
func (m *Mesh) Anim(i int) AnimDesc       { return m.anims[i] }
func (m *Mesh) NumTextures() int          { return len(m.texs) }
func (m *Mesh) Texture(i int) prm.TexDesc { return m.texs[i] }

// LimbData returns decoding views over one limb's sub-blocks using the
// cached offset.
func (m *Mesh) LimbData(i int) prm.Block {
	l := m.limbs[i]
	base := int(m.Header.MeshStart) + int(m.offsets[i])
	return prm.MakeBlock(m.data[base:], l.NumVerts, l.NumTris)
}

// offsetByScan re-derives a limb's offset by linear accumulation. Kept
// as the reference for the cache; used by tests only.
func (m *Mesh) offsetByScan(limb int) uint32 {
	var off uint32
	for i := 0; i < limb; i++ {
		l := m.limbs[i]
		off += uint32(prm.BlockSize(l.NumVerts, l.NumTris))
	}
	return off
}

// PixelData returns the raw pixel block of one texture.
func (m *Mesh) PixelData(i int) []byte {
	return prm.PixelBlock(m.texDat, m.texs[i])
}

// ClutData returns the raw CLUT block of one texture.
func (m *Mesh) ClutData(i int) []byte {
	return prm.ClutBlock(m.texDat, m.texs[i])
}

// Frame is a view over one 134-byte keyframe.
type Frame struct {
	data []byte
}

// Frame returns a view of frame n of animation anim. Callers are
// responsible for range-clamping n; see the animator.
func (m *Mesh) Frame(anim, n int) Frame {
	a := m.anims[anim]
	base := int(m.Header.AnimStart) + len(m.anims)*animDescSize + int(a.DataOffset)
	off := base + n*FrameSize
	return Frame{data: m.data[off : off+FrameSize]}
}

// RootPos returns the keyframe's root translation.
func (f Frame) RootPos() (x, y, z int16) {
	return int16(binary.LittleEndian.Uint16(f.data[0:])),
		int16(binary.LittleEndian.Uint16(f.data[2:])),
		int16(binary.LittleEndian.Uint16(f.data[4:]))
}

// LimbRot returns the keyframe's Euler triple for one limb, stored
// (x, y, z) and meant to be applied Z·Y·X.
func (f Frame) LimbRot(limb int) (rx, ry, rz int16) {
	off := 6 + limb*6
	return int16(binary.LittleEndian.Uint16(f.data[off:])),
		int16(binary.LittleEndian.Uint16(f.data[off+2:])),
		int16(binary.LittleEndian.Uint16(f.data[off+4:]))
}

// Face returns the keyframe's auxiliary eye/mouth index.
func (f Frame) Face() uint16 {
	return binary.LittleEndian.Uint16(f.data[FrameSize-2:])
}
