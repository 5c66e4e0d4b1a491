package main

import (
	"fmt"
	"os"

	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/skm"
	"psx-room-renderer/internal/vram"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspect file.prm|file.skm ...")
		os.Exit(1)
	}

	for _, arg := range os.Args[1:] {
		buf, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error %s: %v\n", arg, err)
			continue
		}
		if len(buf) < 4 {
			fmt.Fprintf(os.Stderr, "Too short: %s\n", arg)
			continue
		}

		switch {
		case buf[0] == 'P' && buf[1] == 'R' && buf[2] == 'M':
			inspectPRM(arg, buf)
		case buf[0] == 'S' && buf[1] == 'K' && buf[2] == 'M':
			inspectSKM(arg, buf)
		default:
			fmt.Fprintf(os.Stderr, "Unknown magic in %s\n", arg)
		}
	}
}

func inspectPRM(name string, buf []byte) {
	m, err := prm.Load(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", name, err)
		return
	}

	fmt.Printf("\n=== %s (PRM v2, chunks=%d verts=%d tris=%d textures=%d) ===\n",
		name, m.NumChunks(), m.Header.NumVerts, m.Header.NumTris, m.NumTextures())

	var totalV, totalT int
	for i := 0; i < m.NumChunks(); i++ {
		ch := m.Chunk(i)
		blk := m.ChunkData(i)
		minP, maxP := blockBounds(blk, ch.NumVerts)
		fmt.Printf("  Chunk[%d]: v=%d t=%d center=(%d,%d,%d) r=%d bbox=min(%d,%d,%d) max(%d,%d,%d)\n",
			i, ch.NumVerts, ch.NumTris, ch.CX, ch.CY, ch.CZ, ch.Radius,
			minP[0], minP[1], minP[2], maxP[0], maxP[1], maxP[2])
		totalV += ch.NumVerts
		totalT += ch.NumTris
	}
	if totalV != m.Header.NumVerts || totalT != m.Header.NumTris {
		fmt.Printf("  WARNING: chunk totals v=%d t=%d disagree with header v=%d t=%d\n",
			totalV, totalT, m.Header.NumVerts, m.Header.NumTris)
	}

	printTextures(texList(m.NumTextures(), m.Texture))
	atlasDryRun(texList(m.NumTextures(), m.Texture), nil)
}

func inspectSKM(name string, buf []byte) {
	m, err := skm.Load(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parse error %s: %v\n", name, err)
		return
	}

	fmt.Printf("\n=== %s (SKM v1, limbs=%d anims=%d textures=%d) ===\n",
		name, m.NumLimbs(), m.NumAnims(), m.NumTextures())

	for i := 0; i < m.NumLimbs(); i++ {
		ld := m.Limb(i)
		blk := m.LimbData(i)
		minP, maxP := blockBounds(blk, ld.NumVerts)
		fmt.Printf("  Limb[%d]: v=%d t=%d joint=(%d,%d,%d) child=%s sibling=%s bbox=min(%d,%d,%d) max(%d,%d,%d)\n",
			i, ld.NumVerts, ld.NumTris, ld.JointX, ld.JointY, ld.JointZ,
			linkStr(ld.Child), linkStr(ld.Sibling),
			minP[0], minP[1], minP[2], maxP[0], maxP[1], maxP[2])
	}

	for i := 0; i < m.NumAnims(); i++ {
		ad := m.Anim(i)
		loop := ""
		if ad.Loop() {
			loop = " loop"
		}
		fmt.Printf("  Anim[%d]: frames=%d%s\n", i, ad.FrameCount, loop)
		if ad.FrameCount > 0 {
			f := m.Frame(i, 0)
			rx, ry, rz := f.RootPos()
			fmt.Printf("    frame 0: root=(%d,%d,%d) face=%d\n", rx, ry, rz, f.Face())
		}
	}

	printTextures(texList(m.NumTextures(), m.Texture))
	atlasDryRun(texList(m.NumTextures(), m.Texture), nil)
}

func texList(n int, get func(int) prm.TexDesc) []prm.TexDesc {
	out := make([]prm.TexDesc, n)
	for i := range out {
		out[i] = get(i)
	}
	return out
}

func printTextures(texs []prm.TexDesc) {
	for i, td := range texs {
		depth := "4bit"
		if td.Format == prm.Format8Bit {
			depth = "8bit"
		}
		fmt.Printf("  Tex[%d]: %dx%d %s clut=%d pixels=%dB\n",
			i, td.Width, td.Height, depth, prm.ClutCount(td), prm.PixelSize(td))
	}
}

// atlasDryRun packs the textures through the real allocator and prints
// where each slot would land in VRAM.
func atlasDryRun(room, skel []prm.TexDesc) {
	a := vram.NewAllocator()
	place := func(label string, texs []prm.TexDesc) {
		for i, td := range texs {
			slot, err := a.Alloc(td.Width, td.Height, td.Format, prm.ClutCount(td))
			if err != nil {
				fmt.Printf("  Atlas %s[%d]: REJECTED: %v\n", label, i, err)
				continue
			}
			pr := a.PixelRect(slot)
			cr := a.ClutRect(slot)
			info := a.Info(slot)
			fmt.Printf("  Atlas %s[%d]: slot=%d pix=(%d,%d %dx%d) clut=(%d,%d) tpage=%04x clutid=%04x\n",
				label, i, slot, pr.X, pr.Y, pr.W, pr.H, cr.X, cr.Y, info.TPage, info.Clut)
		}
	}
	place("room", room)
	place("skel", skel)
}

func blockBounds(blk prm.Block, nv int) (minP, maxP [3]int16) {
	if nv == 0 {
		return
	}
	p := blk.Pos(0)
	minP = [3]int16{p.X, p.Y, p.Z}
	maxP = minP
	for i := 1; i < nv; i++ {
		p := blk.Pos(i)
		for k, v := range [3]int16{p.X, p.Y, p.Z} {
			if v < minP[k] {
				minP[k] = v
			}
			if v > maxP[k] {
				maxP[k] = v
			}
		}
	}
	return
}

func linkStr(l uint8) string {
	if l == skm.NoLink {
		return "-"
	}
	return fmt.Sprintf("%d", l)
}
