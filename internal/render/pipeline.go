package render

import (
	"psx-room-renderer/internal/gte"
	"psx-room-renderer/internal/ot"
	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/skeleton"
	"psx-room-renderer/internal/skm"
	"psx-room-renderer/internal/vram"
)

// BuildAtlas rebuilds the atlas slot table for the active texture set
// (room textures first, then skeleton textures) and uploads pixel and
// CLUT blocks through the store. Called once per texture-set change,
// never mid-frame.
//
// A texture that does not fit is skipped and its slot never appears;
// the first such failure is reported after the remaining textures have
// been packed. Allocation order is stable, so results are reproducible.
func (c *Context) BuildAtlas(room *prm.Mesh, skel *skm.Mesh, store *vram.Store) error {
	c.alloc.Reset()
	var firstErr error

	upload := func(w, h uint16, format uint8, clut int, pix, clutDat []byte) {
		slot, err := c.alloc.Alloc(w, h, format, clut)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		store.Upload(pix, c.alloc.PixelRect(slot))
		store.Upload(clutDat, c.alloc.ClutRect(slot))
	}

	if room != nil {
		for i := 0; i < room.NumTextures(); i++ {
			td := room.Texture(i)
			upload(td.Width, td.Height, td.Format, prm.ClutCount(td),
				room.PixelData(i), room.ClutData(i))
		}
	}

	c.skelTexBase = c.alloc.NumSlots()
	if skel != nil {
		for i := 0; i < skel.NumTextures(); i++ {
			td := skel.Texture(i)
			upload(td.Width, td.Height, td.Format, prm.ClutCount(td),
				skel.PixelData(i), skel.ClutData(i))
		}
	}

	return firstErr
}

// RenderFrame runs the full pipeline for one frame and returns the
// populated frame for this parity: view transform once, then every room
// chunk, then every skeleton limb under its bone pose. The returned
// frame stays valid while the other parity renders, so a display stage
// may still be draining it.
//
// The animator's frame counter is not advanced here; playback stepping
// is a discrete external transition.
func (c *Context) RenderFrame(cam Camera, room *prm.Mesh, skel *skm.Mesh,
	anim *skeleton.Animator, skelX, skelY, skelZ int32) *Frame {

	f := &c.frames[c.parity]
	c.parity ^= 1
	f.table.Clear()
	f.count = 0

	viewRot, tx, ty, tz := cam.View()

	xf := gte.Transform{
		Rot: viewRot,
		TRX: tx, TRY: ty, TRZ: tz,
		OFX: ScreenW / 2 << 16,
		OFY: ScreenH / 2 << 16,
		H:   HProj,
	}

	if room != nil {
		for ci := 0; ci < room.NumChunks(); ci++ {
			c.renderChunk(f, &xf, room, ci)
		}
	}

	if skel != nil && anim != nil {
		c.renderSkeleton(f, viewRot, tx, ty, tz, skel, anim, skelX, skelY, skelZ)
	}

	return f
}

func (c *Context) renderChunk(f *Frame, xf *gte.Transform, room *prm.Mesh, ci int) {
	ch := room.Chunk(ci)
	if ch.NumVerts == 0 || ch.NumTris == 0 {
		return
	}

	blk := room.ChunkData(ci)
	c.transform(xf, blk)
	c.emit(f, blk, c.cfg.RoomWinding, 0, room.NumTextures())
}

func (c *Context) renderSkeleton(f *Frame, viewRot gte.Mat3, tx, ty, tz int32,
	skel *skm.Mesh, anim *skeleton.Animator, skelX, skelY, skelZ int32) {

	bones := anim.ComputePose()

	for li := 0; li < skel.NumLimbs(); li++ {
		limb := skel.Limb(li)
		// Meshless limbs still posed above; nothing to draw.
		if limb.NumVerts == 0 || limb.NumTris == 0 {
			continue
		}

		b := bones[li]

		// Per-limb view transform: camera rotation composed with the
		// bone's world rotation; translation through the camera.
		bx := b.TX + skelX
		by := b.TY + skelY
		bz := b.TZ + skelZ
		vtx, vty, vtz := viewRot.MulVec(bx, by, bz)

		xf := gte.Transform{
			Rot: gte.Mul(viewRot, b.Rot),
			TRX: vtx + tx, TRY: vty + ty, TRZ: vtz + tz,
			OFX: ScreenW / 2 << 16,
			OFY: ScreenH / 2 << 16,
			H:   HProj,
		}

		blk := skel.LimbData(li)
		c.transform(&xf, blk)
		c.emit(f, blk, c.cfg.SkelWinding, c.skelTexBase, skel.NumTextures())
	}
}

// transform batch-transforms a block's vertices into the scratch array.
func (c *Context) transform(xf *gte.Transform, blk prm.Block) {
	n := blk.NumVerts
	if n > MaxVerts {
		n = MaxVerts
	}
	i := 0
	for ; i+2 < n; i += 3 {
		c.scratch[i] = xf.Perspective(blk.Pos(i))
		c.scratch[i+1] = xf.Perspective(blk.Pos(i + 1))
		c.scratch[i+2] = xf.Perspective(blk.Pos(i + 2))
	}
	for ; i < n; i++ {
		c.scratch[i] = xf.Perspective(blk.Pos(i))
	}
}

// emit culls, sorts and records every triangle of a transformed block.
// Stops silently when the draw-record pool fills: overflow triangles
// are dropped, not queued.
func (c *Context) emit(f *Frame, blk prm.Block, winding Winding, texBase, numTex int) {
	for t := 0; t < blk.NumTris && f.count < MaxTris; t++ {
		tri := blk.Tri(t)
		sv0 := c.scratch[tri.V0]
		sv1 := c.scratch[tri.V1]
		sv2 := c.scratch[tri.V2]

		// Near-plane reject: depth zero is "behind or at the camera".
		if sv0.SZ == 0 || sv1.SZ == 0 || sv2.SZ == 0 {
			continue
		}

		cross := int32(sv1.SX-sv0.SX)*int32(sv2.SY-sv0.SY) -
			int32(sv2.SX-sv0.SX)*int32(sv1.SY-sv0.SY)
		if winding == WindingExterior {
			if cross <= 0 {
				continue
			}
		} else {
			if cross >= 0 {
				continue
			}
		}

		if outOfBounds(sv0) || outOfBounds(sv1) || outOfBounds(sv2) {
			continue
		}

		bucket := depthBucket(uint32(sv0.SZ) + uint32(sv1.SZ) + uint32(sv2.SZ))
		if bucket <= 0 || bucket >= ot.Size {
			continue
		}

		rec := &f.recs[f.count]
		rec.X = [3]int16{sv0.SX, sv1.SX, sv2.SX}
		rec.Y = [3]int16{sv0.SY, sv1.SY, sv2.SY}

		slot := texBase + int(tri.Tex)
		rec.Textured = int(tri.Tex) < numTex && slot < c.alloc.NumSlots()
		if rec.Textured {
			ti := c.alloc.Info(slot)
			uv0 := blk.UV(int(tri.V0))
			uv1 := blk.UV(int(tri.V1))
			uv2 := blk.UV(int(tri.V2))
			rec.U = [3]uint8{
				uv0.U&ti.UMask + ti.UOff,
				uv1.U&ti.UMask + ti.UOff,
				uv2.U&ti.UMask + ti.UOff,
			}
			rec.V = [3]uint8{
				uv0.V&ti.VMask + ti.VOff,
				uv1.V&ti.VMask + ti.VOff,
				uv2.V&ti.VMask + ti.VOff,
			}
			rec.TPage = ti.TPage
			rec.Clut = ti.Clut
			// Neutral modulation: the texel carries the color.
			neutral := prm.Color{R: 128, G: 128, B: 128, A: 255}
			rec.Colors = [3]prm.Color{neutral, neutral, neutral}
		} else {
			rec.Colors = [3]prm.Color{
				c.vertexColor(blk, int(tri.V0)),
				c.vertexColor(blk, int(tri.V1)),
				c.vertexColor(blk, int(tri.V2)),
			}
		}

		f.table.Insert(int32(f.count), bucket)
		f.count++
	}
}

// depthBucket quantizes a summed triangle depth to an ordering-table
// index: sumZ scaled by Size/3 in 4.12 fixed point, so three vertices
// at equal depth d land in bucket d*Size>>12.
func depthBucket(sumZ uint32) int {
	return int(sumZ * otScale >> 12)
}

// vertexColor applies the ambient fallback to the all-black sentinel.
func (c *Context) vertexColor(blk prm.Block, i int) prm.Color {
	col := blk.Color(i)
	if col.R == 0 && col.G == 0 && col.B == 0 {
		return c.cfg.Ambient
	}
	return col
}

func outOfBounds(v gte.ScreenVtx) bool {
	return v.SX < -screenBound || v.SX > screenBound ||
		v.SY < -screenBound || v.SY > screenBound
}
