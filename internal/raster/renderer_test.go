package raster

import (
	"encoding/binary"
	"testing"

	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/vram"
)

// oneTriRoom builds a one-triangle PRM blob with a flat vertex color.
func oneTriRoom(t *testing.T, col prm.Color) *prm.Mesh {
	t.Helper()

	const headerSize, chunkDescSize = 20, 16
	const nv, nt = 3, 1
	dataStart := headerSize + chunkDescSize
	texStart := dataStart + prm.BlockSize(nv, nt)

	buf := make([]byte, texStart)
	copy(buf, "PRM\x02")
	binary.LittleEndian.PutUint16(buf[4:], 1)
	binary.LittleEndian.PutUint16(buf[6:], nv)
	binary.LittleEndian.PutUint16(buf[8:], nt)
	binary.LittleEndian.PutUint32(buf[12:], uint32(dataStart))
	binary.LittleEndian.PutUint32(buf[16:], uint32(texStart))
	binary.LittleEndian.PutUint16(buf[headerSize+8:], nv)
	binary.LittleEndian.PutUint16(buf[headerSize+10:], nt)

	verts := [3][3]int16{{-100, 0, 0}, {100, 0, 0}, {0, -100, 0}}
	for i, v := range verts {
		binary.LittleEndian.PutUint16(buf[dataStart+i*8:], uint16(v[0]))
		binary.LittleEndian.PutUint16(buf[dataStart+i*8+2:], uint16(v[1]))
		binary.LittleEndian.PutUint16(buf[dataStart+i*8+4:], uint16(v[2]))
		off := dataStart + nv*8 + i*4
		buf[off], buf[off+1], buf[off+2], buf[off+3] = col.R, col.G, col.B, col.A
	}
	triOff := dataStart + nv*8 + nv*4 + (nv*2+3)&^3
	buf[triOff], buf[triOff+1], buf[triOff+2], buf[triOff+3] = 0, 1, 2, 0xFF

	m, err := prm.Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestDrawFlatTriangle(t *testing.T) {
	col := prm.Color{R: 200, G: 16, B: 8, A: 255}
	room := oneTriRoom(t, col)

	ctx := render.NewContext(render.DefaultConfig())
	r := NewRenderer(vram.NewStore(), 1)
	fb := r.FrameBuffer()

	f := ctx.RenderFrame(render.Camera{Dist: 100}, room, nil, nil, 0, 0, 0)
	if f.Len() != 1 {
		t.Fatalf("pipeline emitted %d records", f.Len())
	}
	r.Draw(fb, f, 0, 0, 0)

	// A flat-colored triangle interpolates to its exact color.
	covered := 0
	for i := 0; i < len(fb.Pix); i += 4 {
		if fb.Pix[i] == 0 && fb.Pix[i+1] == 0 && fb.Pix[i+2] == 0 {
			continue
		}
		covered++
		if fb.Pix[i] != col.R || fb.Pix[i+1] != col.G || fb.Pix[i+2] != col.B {
			t.Fatalf("pixel %d = (%d,%d,%d), want (%d,%d,%d)",
				i/4, fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], col.R, col.G, col.B)
		}
	}
	if covered == 0 {
		t.Fatal("triangle covered no pixels")
	}

	// Corners stay background.
	if fb.Pix[0] != 0 || fb.Pix[3] != 255 {
		t.Errorf("corner pixel = (%d, alpha %d)", fb.Pix[0], fb.Pix[3])
	}
}

func TestDrawClears(t *testing.T) {
	r := NewRenderer(vram.NewStore(), 1)
	fb := r.FrameBuffer()
	for i := range fb.Pix {
		fb.Pix[i] = 0xAA
	}

	ctx := render.NewContext(render.DefaultConfig())
	f := ctx.RenderFrame(render.Camera{Dist: 100}, nil, nil, nil, 0, 0, 0)
	r.Draw(fb, f, 30, 40, 50)

	if fb.Pix[0] != 30 || fb.Pix[1] != 40 || fb.Pix[2] != 50 || fb.Pix[3] != 255 {
		t.Errorf("clear color = (%d,%d,%d,%d)", fb.Pix[0], fb.Pix[1], fb.Pix[2], fb.Pix[3])
	}
}

func TestSupersampleScale(t *testing.T) {
	r := NewRenderer(vram.NewStore(), 2)
	fb := r.FrameBuffer()
	if fb.Width != render.ScreenW*2 || fb.Height != render.ScreenH*2 {
		t.Errorf("framebuffer %dx%d, want %dx%d",
			fb.Width, fb.Height, render.ScreenW*2, render.ScreenH*2)
	}
}

func TestDownsample(t *testing.T) {
	fb := NewFrameBuffer(render.ScreenW*2, render.ScreenH*2)
	fb.Clear(10, 200, 30)

	img := Downsample(fb.Image(), render.ScreenW, render.ScreenH)
	b := img.Bounds()
	if b.Dx() != render.ScreenW || b.Dy() != render.ScreenH {
		t.Fatalf("downsampled to %dx%d", b.Dx(), b.Dy())
	}
	// A uniform image stays uniform under any resampling kernel.
	i := img.PixOffset(100, 100)
	if img.Pix[i] != 10 || img.Pix[i+1] != 200 || img.Pix[i+2] != 30 {
		t.Errorf("center pixel = (%d,%d,%d)", img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	}

	// Already-native frames pass through untouched.
	native := NewFrameBuffer(render.ScreenW, render.ScreenH).Image()
	if got := Downsample(native, render.ScreenW, render.ScreenH); got != native {
		t.Error("native-size image was copied")
	}
}
