// Package render runs the per-frame transform, cull and sort pipeline:
// batch vertex transforms per chunk/limb, triangle rejection, depth
// bucketing into an ordering table, and texture slot resolution.
package render

import (
	"psx-room-renderer/internal/gte"
	"psx-room-renderer/internal/ot"
	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/vram"
)

// Tuning constants. HProj is the projection plane distance; the screen
// bound of ±512 is wider than the visible area on purpose, catching
// near-camera projection blow-up before the hardware clamp would.
const (
	ScreenW = 320
	ScreenH = 240
	HProj   = 180

	MaxVerts = 256
	MaxTris  = 1200

	otScale     = ot.Size / 3
	screenBound = 512
)

// Winding selects the backface-cull sign convention. Exterior (room)
// meshes are authored with the opposite winding from overlay meshes
// such as skeletons, so the convention is per mesh kind, not global.
type Winding int

const (
	// WindingExterior keeps triangles whose screen cross product is
	// positive (room geometry).
	WindingExterior Winding = iota
	// WindingOverlay keeps triangles whose cross product is negative
	// (skeleton overlays).
	WindingOverlay
)

// DrawRecord is one sorted triangle ready for submission: screen
// points, colors or neutral modulation, resolved UVs and the texture
// page/palette selectors.
type DrawRecord struct {
	X, Y     [3]int16
	Colors   [3]prm.Color
	U, V     [3]uint8
	TPage    uint16
	Clut     uint16
	Textured bool
}

// Frame is one parity's render output: the ordering table plus the
// draw-record pool it indexes. Valid until the same parity renders
// again.
type Frame struct {
	table *ot.Table
	recs  [MaxTris]DrawRecord
	count int
}

// Len returns the number of emitted draw records.
func (f *Frame) Len() int { return f.count }

// Walk visits draw records back-to-front.
func (f *Frame) Walk(fn func(*DrawRecord)) {
	f.table.Walk(func(slot int32) {
		fn(&f.recs[slot])
	})
}

// Config carries the policy knobs of the pipeline.
type Config struct {
	// Ambient replaces the all-black "no baked color" sentinel on
	// untextured triangles. A heuristic, not an authoring rule, hence
	// configurable.
	Ambient prm.Color

	RoomWinding Winding
	SkelWinding Winding
}

// DefaultConfig matches the conventions the reference assets were
// authored with.
func DefaultConfig() Config {
	return Config{
		Ambient:     prm.Color{R: 80, G: 80, B: 80, A: 255},
		RoomWinding: WindingExterior,
		SkelWinding: WindingOverlay,
	}
}

// Context owns all per-frame render state: double-buffered ordering
// tables and draw-record pools alternated by frame parity, the shared
// transform scratch array, and the texture atlas slot table. Constructed
// once; one frame's pipeline runs to completion before the next starts,
// so no locking is needed.
type Context struct {
	cfg   Config
	alloc *vram.Allocator

	frames [2]Frame
	parity int

	// Skeleton texture slots are appended after room slots.
	skelTexBase int

	scratch [MaxVerts]gte.ScreenVtx
}

func NewContext(cfg Config) *Context {
	c := &Context{cfg: cfg, alloc: vram.NewAllocator()}
	for i := range c.frames {
		c.frames[i].table = ot.NewTable(MaxTris)
	}
	return c
}

// Allocator exposes the atlas slot table (read-only use).
func (c *Context) Allocator() *vram.Allocator { return c.alloc }

// SkelTexBase returns the slot index of the first skeleton texture.
func (c *Context) SkelTexBase() int { return c.skelTexBase }
