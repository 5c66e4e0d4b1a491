package skm

import (
	"encoding/binary"
	"errors"
	"testing"

	"psx-room-renderer/internal/prm"
)

// skmBuilder assembles a minimal valid SKM v1 blob for tests.
type skmBuilder struct {
	limbs []limbSpec
	anims []animSpec
	texs  []texSpec
}

type limbSpec struct {
	jx, jy, jz     int16
	child, sibling uint8
	verts          [][3]int16
	tris           []prm.Tri
}

type animSpec struct {
	flags  uint8
	frames []frameSpec
}

type frameSpec struct {
	root [3]int16
	rots [MaxLimbs][3]int16
	face uint16
}

type texSpec struct {
	w, h       uint16
	format     uint8
	clutColors uint8
	pixels     []byte
	clut       []byte
}

func put16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func put32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

func (sb *skmBuilder) build() []byte {
	meshStart := headerSize + len(sb.limbs)*limbDescSize

	var meshSize int
	for _, l := range sb.limbs {
		meshSize += prm.BlockSize(len(l.verts), len(l.tris))
	}

	animStart := meshStart + meshSize
	frameBase := animStart + len(sb.anims)*animDescSize

	var frameBytes int
	animOffsets := make([]uint32, len(sb.anims))
	for i, a := range sb.anims {
		animOffsets[i] = uint32(frameBytes)
		frameBytes += len(a.frames) * FrameSize
	}

	texStart := frameBase + frameBytes
	texDataStart := texStart + len(sb.texs)*prm.TexDescSize

	var texSize int
	texOffsets := make([]uint32, len(sb.texs))
	for i, tx := range sb.texs {
		texOffsets[i] = uint32(texSize)
		texSize += (len(tx.pixels)+1)&^1 + len(tx.clut)
	}

	buf := make([]byte, texDataStart+texSize)
	copy(buf, "SKM\x01")
	buf[4] = uint8(len(sb.limbs))
	buf[5] = uint8(len(sb.anims))
	put16(buf, 6, uint16(len(sb.texs)))
	put32(buf, 8, uint32(meshStart))
	put32(buf, 12, uint32(animStart))
	put32(buf, 16, uint32(texStart))

	meshOff := meshStart
	for i, l := range sb.limbs {
		off := headerSize + i*limbDescSize
		put16(buf, off, uint16(l.jx))
		put16(buf, off+2, uint16(l.jy))
		put16(buf, off+4, uint16(l.jz))
		buf[off+6] = l.child
		buf[off+7] = l.sibling
		put16(buf, off+8, uint16(len(l.verts)))
		put16(buf, off+10, uint16(len(l.tris)))

		p := meshOff
		for _, v := range l.verts {
			put16(buf, p, uint16(v[0]))
			put16(buf, p+2, uint16(v[1]))
			put16(buf, p+4, uint16(v[2]))
			p += 8
		}
		p = meshOff + len(l.verts)*12 + (len(l.verts)*2+3)&^3
		for _, tr := range l.tris {
			buf[p], buf[p+1], buf[p+2], buf[p+3] = tr.V0, tr.V1, tr.V2, tr.Tex
			p += 4
		}
		meshOff += prm.BlockSize(len(l.verts), len(l.tris))
	}

	for i, a := range sb.anims {
		off := animStart + i*animDescSize
		put16(buf, off, uint16(len(a.frames)))
		buf[off+2] = a.flags
		put32(buf, off+4, animOffsets[i])

		p := frameBase + int(animOffsets[i])
		for _, fr := range a.frames {
			put16(buf, p, uint16(fr.root[0]))
			put16(buf, p+2, uint16(fr.root[1]))
			put16(buf, p+4, uint16(fr.root[2]))
			for li, r := range fr.rots {
				o := p + 6 + li*6
				put16(buf, o, uint16(r[0]))
				put16(buf, o+2, uint16(r[1]))
				put16(buf, o+4, uint16(r[2]))
			}
			put16(buf, p+FrameSize-2, fr.face)
			p += FrameSize
		}
	}

	for i, tx := range sb.texs {
		off := texStart + i*prm.TexDescSize
		put16(buf, off, tx.w)
		put16(buf, off+2, tx.h)
		buf[off+4] = tx.format
		buf[off+5] = tx.clutColors
		put32(buf, off+8, texOffsets[i])

		p := texDataStart + int(texOffsets[i])
		copy(buf[p:], tx.pixels)
		copy(buf[p+(len(tx.pixels)+1)&^1:], tx.clut)
	}

	return buf
}

func quad() ([][3]int16, []prm.Tri) {
	verts := [][3]int16{{-10, 0, 0}, {10, 0, 0}, {10, -20, 0}, {-10, -20, 0}}
	tris := []prm.Tri{{V0: 0, V1: 1, V2: 2}, {V0: 0, V1: 2, V2: 3}}
	return verts, tris
}

// Torso with two arms: 0 -> child 1, 1 -> sibling 2.
func testSKM() *skmBuilder {
	v, tr := quad()
	f0 := frameSpec{root: [3]int16{10, 20, 30}, face: 2}
	f1 := frameSpec{root: [3]int16{11, 21, 31}, face: 3}
	f1.rots[1] = [3]int16{0x0100, 0, -0x0200}

	return &skmBuilder{
		limbs: []limbSpec{
			{child: 1, sibling: NoLink, verts: v, tris: tr},
			{jx: -12, jy: 4, child: NoLink, sibling: 2, verts: v, tris: tr},
			{jx: 12, jy: 4, child: NoLink, sibling: NoLink, verts: v[:3], tris: tr[:1]},
		},
		anims: []animSpec{
			{flags: 1, frames: []frameSpec{f0, f1}},
			{flags: 0, frames: []frameSpec{f0}},
		},
		texs: []texSpec{
			{w: 32, h: 32, format: prm.Format8Bit, clutColors: 0,
				pixels: make([]byte, 1024), clut: make([]byte, 512)},
		},
	}
}

func TestLoad(t *testing.T) {
	m, err := Load(testSKM().build())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m.NumLimbs() != 3 || m.NumAnims() != 2 || m.NumTextures() != 1 {
		t.Fatalf("limbs=%d anims=%d textures=%d", m.NumLimbs(), m.NumAnims(), m.NumTextures())
	}

	l := m.Limb(1)
	if l.JointX != -12 || l.JointY != 4 || l.Child != NoLink || l.Sibling != 2 {
		t.Errorf("limb 1 = %+v", l)
	}

	if a := m.Anim(0); a.FrameCount != 2 || !a.Loop() {
		t.Errorf("anim 0 = %+v", a)
	}
	if a := m.Anim(1); a.FrameCount != 1 || a.Loop() {
		t.Errorf("anim 1 = %+v", a)
	}
}

func TestLimbOffsetsMatchScan(t *testing.T) {
	m, err := Load(testSKM().build())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < m.NumLimbs(); i++ {
		if m.offsets[i] != m.offsetByScan(i) {
			t.Errorf("limb %d: cached offset %d, scan %d", i, m.offsets[i], m.offsetByScan(i))
		}
	}
}

func TestLimbData(t *testing.T) {
	m, err := Load(testSKM().build())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Limb 2 sits after two full quad blocks; a decode error here means
	// the offset accumulation drifted.
	blk := m.LimbData(2)
	if blk.NumVerts != 3 || blk.NumTris != 1 {
		t.Fatalf("limb 2 block nv=%d nt=%d", blk.NumVerts, blk.NumTris)
	}
	if p := blk.Pos(1); p.X != 10 || p.Y != 0 {
		t.Errorf("limb 2 pos 1 = %+v", p)
	}
	if tr := blk.Tri(0); tr.V2 != 2 {
		t.Errorf("limb 2 tri 0 = %+v", tr)
	}
}

func TestFrames(t *testing.T) {
	m, err := Load(testSKM().build())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	f := m.Frame(0, 0)
	x, y, z := f.RootPos()
	if x != 10 || y != 20 || z != 30 {
		t.Errorf("frame 0 root = (%d,%d,%d), want (10,20,30)", x, y, z)
	}
	if f.Face() != 2 {
		t.Errorf("frame 0 face = %d, want 2", f.Face())
	}

	f = m.Frame(0, 1)
	rx, ry, rz := f.LimbRot(1)
	if rx != 0x0100 || ry != 0 || rz != -0x0200 {
		t.Errorf("frame 1 limb 1 rot = (%#x,%#x,%#x)", rx, ry, rz)
	}

	// Second animation's frames start at its own data offset.
	f = m.Frame(1, 0)
	if x, _, _ := f.RootPos(); x != 10 {
		t.Errorf("anim 1 frame 0 root x = %d, want 10", x)
	}
}

func TestLoadBadMagic(t *testing.T) {
	buf := testSKM().build()
	buf[0] = 'P'
	if _, err := Load(buf); !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	full := testSKM().build()
	for _, n := range []int{0, headerSize - 1, headerSize + 3, len(full) - 1} {
		if _, err := Load(full[:n]); err == nil {
			t.Errorf("cut at %d: expected error", n)
		}
	}
}

func TestLoadEmptyAnim(t *testing.T) {
	sb := testSKM()
	sb.anims[1].frames = nil
	if _, err := Load(sb.build()); err == nil {
		t.Error("expected error for animation with zero frames")
	}
}

func TestLoadBadLimbLinks(t *testing.T) {
	cases := []struct {
		name string
		edit func(*skmBuilder)
	}{
		{"sibling self-link", func(sb *skmBuilder) { sb.limbs[1].sibling = 1 }},
		{"child cycle to root", func(sb *skmBuilder) { sb.limbs[2].child = 0 }},
		{"limb linked twice", func(sb *skmBuilder) { sb.limbs[2].sibling = 1 }},
		{"link out of range", func(sb *skmBuilder) { sb.limbs[2].sibling = 7 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sb := testSKM()
			tc.edit(sb)
			if _, err := Load(sb.build()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadLimbCap(t *testing.T) {
	buf := testSKM().build()
	buf[4] = MaxLimbs + 1
	if _, err := Load(buf); err == nil {
		t.Error("expected error for limb count above frame layout cap")
	}
}
