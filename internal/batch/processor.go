// Package batch renders animation frame sequences on a worker pool.
// Each worker owns a full pipeline (context, VRAM store, rasterizer);
// atlas packing is deterministic, so every worker resolves identical
// texture slots and frames can be rendered in any order.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/raster"
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/skeleton"
	"psx-room-renderer/internal/skm"
	"psx-room-renderer/internal/vram"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds all shared resources for a sequence run.
type Config struct {
	Room *prm.Mesh
	Skel *skm.Mesh

	OutputDir   string
	RenderCfg   render.Config
	Camera      render.Camera
	YawStep     int32 // camera yaw increment per frame, binary angle
	Anim        int   // animation index played across the sequence
	Frames      int
	Supersample int
	WebPQuality int
	Workers     int
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Frame   int
	Tris    int
	Success bool
	Error   string
}

// Run renders Frames sequential animation frames using a worker pool.
func Run(cfg Config) []Result {
	total := cfg.Frames
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f frames/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	frameChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker, err := newWorker(cfg)
			if err != nil {
				for idx := range frameChan {
					results[idx] = Result{Frame: idx, Error: err.Error()}
					processed.Add(1)
				}
				return
			}
			for idx := range frameChan {
				results[idx] = worker.renderFrame(cfg, idx)
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := 0; i < total; i++ {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

// worker is one pool member's private pipeline state.
type worker struct {
	ctx  *render.Context
	rast *raster.Renderer
	fb   *raster.FrameBuffer
	anim *skeleton.Animator
}

func newWorker(cfg Config) (*worker, error) {
	ctx := render.NewContext(cfg.RenderCfg)
	store := vram.NewStore()
	if err := ctx.BuildAtlas(cfg.Room, cfg.Skel, store); err != nil {
		return nil, fmt.Errorf("batch: atlas: %w", err)
	}

	w := &worker{
		ctx:  ctx,
		rast: raster.NewRenderer(store, cfg.Supersample),
	}
	w.fb = w.rast.FrameBuffer()

	if cfg.Skel != nil {
		w.anim = skeleton.NewAnimator(cfg.Skel)
	}
	return w, nil
}

func (w *worker) renderFrame(cfg Config, idx int) Result {
	cam := cfg.Camera
	cam.Yaw += cfg.YawStep * int32(idx)

	// Frames render independently, so the animator is stepped from
	// zero each time rather than carried between jobs.
	if w.anim != nil {
		w.anim.SetAnimation(cfg.Anim)
		for i := 0; i < idx; i++ {
			w.anim.Advance()
		}
	}

	f := w.ctx.RenderFrame(cam, cfg.Room, cfg.Skel, w.anim, 0, 0, 0)
	w.rast.Draw(w.fb, f, 0, 0, 0)

	img := w.fb.Image()
	if cfg.Supersample > 1 {
		img = raster.Downsample(img, render.ScreenW, render.ScreenH)
	}

	outPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("frame_%04d.webp", idx))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return Result{Frame: idx, Error: err.Error()}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return Result{Frame: idx, Error: err.Error()}
	}
	defer out.Close()

	if err := nativewebp.Encode(out, img, nil); err != nil {
		return Result{Frame: idx, Error: fmt.Sprintf("WebP encode: %v", err)}
	}

	return Result{Frame: idx, Tris: f.Len(), Success: true}
}
