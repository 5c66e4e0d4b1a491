package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/skm"
	"psx-room-renderer/internal/vram"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

func main() {
	outDir := flag.String("output", ".", "Output directory")
	asWebP := flag.Bool("webp", false, "Write WebP instead of TGA")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: texdump [-output dir] [-webp] file.prm|file.skm ...")
		os.Exit(1)
	}

	errors := 0
	for _, arg := range flag.Args() {
		if err := dumpFile(arg, *outDir, *asWebP); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
		}
	}
	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone. All textures extracted.")
}

func dumpFile(path, outDir string, asWebP bool) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ctx := render.NewContext(render.DefaultConfig())
	store := vram.NewStore()
	var room *prm.Mesh
	var skel *skm.Mesh

	switch {
	case len(buf) >= 3 && buf[0] == 'P' && buf[1] == 'R' && buf[2] == 'M':
		room, err = prm.Load(buf)
	case len(buf) >= 3 && buf[0] == 'S' && buf[1] == 'K' && buf[2] == 'M':
		skel, err = skm.Load(buf)
	default:
		return fmt.Errorf("%s: unknown magic", path)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if err := ctx.BuildAtlas(room, skel, store); err != nil {
		return fmt.Errorf("atlas %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	alloc := ctx.Allocator()
	for slot := 0; slot < alloc.NumSlots(); slot++ {
		info := alloc.Info(slot)
		img := decodeSlot(store, info)

		ext := ".tga"
		if asWebP {
			ext = ".webp"
		}
		outPath := filepath.Join(outDir, fmt.Sprintf("%s_tex%02d%s", stem, slot, ext))
		if err := writeImage(outPath, img, asWebP); err != nil {
			return err
		}
		b := img.Bounds()
		fmt.Printf("OK  %s tex[%d] %dx%d -> %s\n", path, slot, b.Dx(), b.Dy(), outPath)
	}
	return nil
}

// decodeSlot samples the full texel grid of one atlas slot the same way
// the draw stage does, so the dump shows exactly what triangles see.
func decodeSlot(store *vram.Store, info vram.TexInfo) *image.NRGBA {
	w := int(info.UMask) + 1
	h := int(info.VMask) + 1
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			c := store.Sample(info.TPage, info.Clut, uint8(u)+info.UOff, uint8(v)+info.VOff)
			r, g, b, ok := vram.RGB(c)
			i := img.PixOffset(u, v)
			if ok {
				img.Pix[i] = r
				img.Pix[i+1] = g
				img.Pix[i+2] = b
				img.Pix[i+3] = 255
			}
		}
	}
	return img
}

func writeImage(path string, img image.Image, asWebP bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if asWebP {
		if err := nativewebp.Encode(f, img, nil); err != nil {
			return fmt.Errorf("webp %s: %w", path, err)
		}
		return nil
	}
	if err := tga.Encode(f, img); err != nil {
		return fmt.Errorf("tga %s: %w", path, err)
	}
	return nil
}
