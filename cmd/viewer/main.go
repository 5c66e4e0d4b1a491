package main

import (
	"flag"
	"fmt"
	"os"

	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/raster"
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/skeleton"
	"psx-room-renderer/internal/skm"
	"psx-room-renderer/internal/vram"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	yawSpeed   = 0x0080 // binary angle per tick while an arrow is held
	pitchSpeed = 0x0040
	zoomSpeed  = 8
	minDist    = 64
	maxDist    = 4096
)

// game drives the pipeline at the display tick rate: input updates the
// camera and animator as discrete transitions, then one frame renders
// and rasterizes into the staging image.
type game struct {
	ctx  *render.Context
	rast *raster.Renderer
	fb   *raster.FrameBuffer

	room *prm.Mesh
	skel *skm.Mesh
	anim *skeleton.Animator

	cam      render.Camera
	showSkel bool

	screen *ebiten.Image
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Yaw -= yawSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Yaw += yawSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pitch -= pitchSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pitch += pitchSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) && g.cam.Dist > minDist {
		g.cam.Dist -= zoomSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) && g.cam.Dist < maxDist {
		g.cam.Dist += zoomSpeed
	}

	if g.anim != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyA) {
			g.anim.NextAnimation()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			g.anim.TogglePause()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyT) {
			g.showSkel = !g.showSkel
		}
		if g.anim.State() == skeleton.Playing {
			g.anim.Advance()
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	skel, anim := g.skel, g.anim
	if !g.showSkel {
		skel, anim = nil, nil
	}

	f := g.ctx.RenderFrame(g.cam, g.room, skel, anim, 0, 0, 0)
	g.rast.Draw(g.fb, f, 0, 0, 0)

	if g.screen == nil {
		g.screen = ebiten.NewImage(g.fb.Width, g.fb.Height)
	}
	g.screen.WritePixels(g.fb.Pix)
	screen.DrawImage(g.screen, nil)

	title := fmt.Sprintf("tris=%d yaw=%04x pitch=%04x dist=%d",
		f.Len(), uint16(g.cam.Yaw), uint16(g.cam.Pitch), g.cam.Dist)
	if g.anim != nil && g.showSkel {
		title += fmt.Sprintf(" anim=%d frame=%d", g.anim.Anim(), g.anim.Frame())
	}
	ebiten.SetWindowTitle("Room Viewer — " + title)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width, g.fb.Height
}

func main() {
	roomPath := flag.String("room", "", "Path to room .prm file")
	skelPath := flag.String("skel", "", "Path to actor .skm file")
	flag.Parse()

	if *roomPath == "" && *skelPath == "" {
		fmt.Fprintln(os.Stderr, "usage: viewer -room file.prm [-skel file.skm]")
		os.Exit(1)
	}

	g := &game{
		cam:      render.Camera{Dist: 600},
		showSkel: true,
	}

	if *roomPath != "" {
		buf, err := os.ReadFile(*roomPath)
		if err == nil {
			g.room, err = prm.Load(buf)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "room: %v\n", err)
			os.Exit(1)
		}
	}
	if *skelPath != "" {
		buf, err := os.ReadFile(*skelPath)
		if err == nil {
			g.skel, err = skm.Load(buf)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "skeleton: %v\n", err)
			os.Exit(1)
		}
		g.anim = skeleton.NewAnimator(g.skel)
	}

	g.ctx = render.NewContext(render.DefaultConfig())
	store := vram.NewStore()
	if err := g.ctx.BuildAtlas(g.room, g.skel, store); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: atlas: %v\n", err)
	}
	g.rast = raster.NewRenderer(store, 1)
	g.fb = g.rast.FrameBuffer()

	ebiten.SetWindowTitle("Room Viewer")
	ebiten.SetWindowSize(render.ScreenW*2, render.ScreenH*2)
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
