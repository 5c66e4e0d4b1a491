// Package prm reads PRM v2 room meshes: chunked static geometry with a
// packed texture section, laid out for GTE batch transforms.
//
// Layout (little-endian, 4-byte aligned):
//
//	Header       20 bytes
//	ChunkDesc[]  num_chunks * 16 bytes
//	Chunk data   (contiguous, at data_start)
//	  Per chunk: positions[nv*8] | colors[nv*4] | uvs[nv*2 padded] | tris[nt*4]
//	Texture section (at tex_start)
//	  TexDesc[]  num_textures * 12 bytes
//	  Per texture: pixel data then CLUT data (contiguous blocks)
//
// Triangle indices are uint8, local to each chunk (max 256 verts/chunk).
// The SKM skeletal format shares the per-limb sub-block layout and the
// texture section wholesale, so skm reuses the record types defined here.
package prm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"psx-room-renderer/internal/gte"
)

var (
	ErrBadMagic  = errors.New("prm: bad magic")
	ErrTruncated = errors.New("prm: buffer truncated")
)

const (
	headerSize    = 20
	chunkDescSize = 16

	// TexDescSize is the on-disc size of one texture descriptor.
	TexDescSize = 12

	posSize = 8
	colSize = 4
	uvSize  = 2
	triSize = 4
)

// Texture pixel formats.
const (
	Format4Bit = 0
	Format8Bit = 1
)

var magic = [4]byte{'P', 'R', 'M', 2}

// Header is the decoded PRM file header. NumVerts and NumTris are file
// totals kept for stats only; rendering uses the per-chunk counts.
type Header struct {
	NumChunks   int
	NumVerts    int
	NumTris     int
	NumTextures int
	DataStart   uint32
	TexStart    uint32
}

// ChunkDesc describes one spatial partition: a bounding sphere and the
// byte offset of its vertex data relative to DataStart.
type ChunkDesc struct {
	CX, CY, CZ int16
	Radius     int16
	NumVerts   int
	NumTris    int
	DataOffset uint32
}

// Color is one baked vertex color. Pure black is the "no baked color"
// sentinel on untextured geometry.
type Color struct {
	R, G, B, A uint8
}

// UV is a texel offset local to the triangle's texture.
type UV struct {
	U, V uint8
}

// Tri is three chunk-local vertex indices plus a texture table index.
type Tri struct {
	V0, V1, V2 uint8
	Tex        uint8
}

// TexDesc describes one packed texture. ClutColors == 0 means the
// maximum palette for the format (16 for 4-bit, 256 for 8-bit).
type TexDesc struct {
	Width, Height uint16
	Format        uint8
	ClutColors    uint8
	DataOffset    uint32
}

// Mesh is a loaded PRM blob. It references the source buffer for its
// whole lifetime and never copies bulk data; accessors decode records
// on the fly from offsets verified once at load.
type Mesh struct {
	Header Header

	data   []byte
	chunks []ChunkDesc
	texs   []TexDesc
	texDat []byte // texture pixel+CLUT blocks, after the TexDesc array
}

// Load validates the header and descriptor tables of a PRM buffer and
// returns a zero-copy view. The buffer must stay resident and unmodified
// while the Mesh is in use.
func Load(buf []byte) (*Mesh, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(buf))
	}
	if [4]byte(buf[0:4]) != magic {
		return nil, ErrBadMagic
	}

	h := Header{
		NumChunks:   int(binary.LittleEndian.Uint16(buf[4:])),
		NumVerts:    int(binary.LittleEndian.Uint16(buf[6:])),
		NumTris:     int(binary.LittleEndian.Uint16(buf[8:])),
		NumTextures: int(binary.LittleEndian.Uint16(buf[10:])),
		DataStart:   binary.LittleEndian.Uint32(buf[12:]),
		TexStart:    binary.LittleEndian.Uint32(buf[16:]),
	}

	descEnd := headerSize + h.NumChunks*chunkDescSize
	if descEnd > len(buf) {
		return nil, fmt.Errorf("%w: chunk table", ErrTruncated)
	}

	m := &Mesh{Header: h, data: buf, chunks: make([]ChunkDesc, h.NumChunks)}
	for i := range m.chunks {
		off := headerSize + i*chunkDescSize
		m.chunks[i] = ChunkDesc{
			CX:         int16(binary.LittleEndian.Uint16(buf[off:])),
			CY:         int16(binary.LittleEndian.Uint16(buf[off+2:])),
			CZ:         int16(binary.LittleEndian.Uint16(buf[off+4:])),
			Radius:     int16(binary.LittleEndian.Uint16(buf[off+6:])),
			NumVerts:   int(binary.LittleEndian.Uint16(buf[off+8:])),
			NumTris:    int(binary.LittleEndian.Uint16(buf[off+10:])),
			DataOffset: binary.LittleEndian.Uint32(buf[off+12:]),
		}
		c := m.chunks[i]
		end := int(h.DataStart) + int(c.DataOffset) + BlockSize(c.NumVerts, c.NumTris)
		if end > len(buf) {
			return nil, fmt.Errorf("%w: chunk %d data", ErrTruncated, i)
		}
	}

	texs, texDat, err := LoadTexSection(buf, int(h.TexStart), h.NumTextures)
	if err != nil {
		return nil, err
	}
	m.texs, m.texDat = texs, texDat

	return m, nil
}

// BlockSize returns the byte size of one chunk/limb data block:
// positions, colors, UVs padded to 4 bytes, then triangle indices.
func BlockSize(nv, nt int) int {
	return nv*posSize + nv*colSize + (nv*uvSize+3)&^3 + nt*triSize
}

// LoadTexSection decodes a texture descriptor table and bounds-checks
// every texture's pixel and CLUT blocks. Shared with the SKM loader.
func LoadTexSection(buf []byte, texStart, numTextures int) ([]TexDesc, []byte, error) {
	tableEnd := texStart + numTextures*TexDescSize
	if texStart < 0 || tableEnd > len(buf) {
		return nil, nil, fmt.Errorf("%w: texture table", ErrTruncated)
	}
	texs := make([]TexDesc, numTextures)
	texDat := buf[tableEnd:]
	for i := range texs {
		off := texStart + i*TexDescSize
		texs[i] = TexDesc{
			Width:      binary.LittleEndian.Uint16(buf[off:]),
			Height:     binary.LittleEndian.Uint16(buf[off+2:]),
			Format:     buf[off+4],
			ClutColors: buf[off+5],
			DataOffset: binary.LittleEndian.Uint32(buf[off+8:]),
		}
		// The CLUT starts at the pixel block rounded up to a 16-bit
		// boundary, so the bound must cover the rounded size.
		td := texs[i]
		end := int(td.DataOffset) + (PixelSize(td)+1)&^1 + ClutCount(td)*2
		if end > len(texDat) {
			return nil, nil, fmt.Errorf("%w: texture %d data", ErrTruncated, i)
		}
	}
	return texs, texDat, nil
}

// PixelSize returns the byte size of a texture's pixel block. 4-bit
// packs two texels per byte.
func PixelSize(td TexDesc) int {
	if td.Format == Format4Bit {
		return (int(td.Width)*int(td.Height) + 1) / 2
	}
	return int(td.Width) * int(td.Height)
}

// ClutCount returns the number of palette entries, resolving the zero
// sentinel to the format's maximum.
func ClutCount(td TexDesc) int {
	if td.ClutColors == 0 {
		if td.Format == Format4Bit {
			return 16
		}
		return 256
	}
	return int(td.ClutColors)
}

func (m *Mesh) NumChunks() int        { return len(m.chunks) }
func (m *Mesh) Chunk(i int) ChunkDesc { return m.chunks[i] }
func (m *Mesh) NumTextures() int      { return len(m.texs) }
func (m *Mesh) Texture(i int) TexDesc { return m.texs[i] }

// PixelData returns the raw pixel block of one texture.
func (m *Mesh) PixelData(i int) []byte {
	return PixelBlock(m.texDat, m.texs[i])
}

// ClutData returns the raw CLUT block of one texture; it follows the
// pixel block rounded up to a 16-bit boundary.
func (m *Mesh) ClutData(i int) []byte {
	return ClutBlock(m.texDat, m.texs[i])
}

// PixelBlock slices one texture's pixel data out of a texture section.
func PixelBlock(texDat []byte, td TexDesc) []byte {
	return texDat[td.DataOffset : int(td.DataOffset)+PixelSize(td)]
}

// ClutBlock slices one texture's CLUT out of a texture section.
func ClutBlock(texDat []byte, td TexDesc) []byte {
	start := int(td.DataOffset) + (PixelSize(td)+1)&^1
	return texDat[start : start+ClutCount(td)*2]
}

// ChunkData returns decoding views over one chunk's sub-blocks.
func (m *Mesh) ChunkData(i int) Block {
	c := m.chunks[i]
	base := int(m.Header.DataStart) + int(c.DataOffset)
	return MakeBlock(m.data[base:], c.NumVerts, c.NumTris)
}

// Block decodes the packed per-chunk (or per-limb) sub-arrays. All
// methods are O(1) and allocation-free.
type Block struct {
	pos, col, uv, tri []byte
	NumVerts, NumTris int
}

// MakeBlock carves the four sub-arrays out of one data block.
func MakeBlock(b []byte, nv, nt int) Block {
	posEnd := nv * posSize
	colEnd := posEnd + nv*colSize
	uvEnd := colEnd + (nv*uvSize+3)&^3
	triEnd := uvEnd + nt*triSize
	return Block{
		pos:      b[:posEnd],
		col:      b[posEnd:colEnd],
		uv:       b[colEnd:uvEnd],
		tri:      b[uvEnd:triEnd],
		NumVerts: nv,
		NumTris:  nt,
	}
}

func (b Block) Pos(i int) gte.Pos {
	off := i * posSize
	return gte.Pos{
		X: int16(binary.LittleEndian.Uint16(b.pos[off:])),
		Y: int16(binary.LittleEndian.Uint16(b.pos[off+2:])),
		Z: int16(binary.LittleEndian.Uint16(b.pos[off+4:])),
	}
}

func (b Block) Color(i int) Color {
	off := i * colSize
	return Color{R: b.col[off], G: b.col[off+1], B: b.col[off+2], A: b.col[off+3]}
}

func (b Block) UV(i int) UV {
	off := i * uvSize
	return UV{U: b.uv[off], V: b.uv[off+1]}
}

func (b Block) Tri(i int) Tri {
	off := i * triSize
	return Tri{V0: b.tri[off], V1: b.tri[off+1], V2: b.tri[off+2], Tex: b.tri[off+3]}
}
