package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"psx-room-renderer/internal/batch"
	"psx-room-renderer/internal/config"
	"psx-room-renderer/internal/prm"
	"psx-room-renderer/internal/render"
	"psx-room-renderer/internal/skm"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	roomPath := flag.String("room", "", "Path to room .prm file")
	skelPath := flag.String("skel", "", "Path to actor .skm file")
	outputDir := flag.String("output", "", "Output directory (default: ./renders)")
	frames := flag.Int("frames", 0, "Number of frames to render (default: 1)")
	anim := flag.Int("anim", 0, "Animation index to play")
	yawStep := flag.Int("yawstep", 0, "Camera yaw increment per frame (binary angle)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	quality := flag.Int("quality", 0, "WebP quality 1-100 (default: 90)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		RoomPRM:   *roomPath,
		ActorSKM:  *skelPath,
		OutputDir: *outputDir,
		Quality:   *quality,
		Workers:   *workers,
		Frames:    *frames,
	})

	if cfg.RoomPRM == "" && cfg.ActorSKM == "" {
		fmt.Fprintln(os.Stderr, "Error: nothing to render. Use -room and/or -skel.")
		os.Exit(1)
	}

	var room *prm.Mesh
	if cfg.RoomPRM != "" {
		buf, err := os.ReadFile(cfg.RoomPRM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading room: %v\n", err)
			os.Exit(1)
		}
		room, err = prm.Load(buf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing room: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Room: %d chunks, %d textures\n", room.NumChunks(), room.NumTextures())
	}

	var skel *skm.Mesh
	if cfg.ActorSKM != "" {
		buf, err := os.ReadFile(cfg.ActorSKM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading skeleton: %v\n", err)
			os.Exit(1)
		}
		skel, err = skm.Load(buf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing skeleton: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Skeleton: %d limbs, %d anims, %d textures\n",
			skel.NumLimbs(), skel.NumAnims(), skel.NumTextures())
	}

	renderCfg := render.DefaultConfig()
	renderCfg.Ambient.R = cfg.AmbientR
	renderCfg.Ambient.G = cfg.AmbientG
	renderCfg.Ambient.B = cfg.AmbientB

	fmt.Printf("Frames: %d, Workers: %d\n", cfg.Frames, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	batchCfg := batch.Config{
		Room:      room,
		Skel:      skel,
		OutputDir: cfg.OutputDir,
		RenderCfg: renderCfg,
		Camera: render.Camera{
			Yaw:   cfg.CameraYaw,
			Pitch: cfg.CameraPitch,
			Dist:  cfg.CameraDist,
		},
		YawStep:     int32(*yawStep),
		Anim:        *anim,
		Frames:      cfg.Frames,
		Supersample: cfg.Supersample,
		WebPQuality: cfg.WebPQuality,
		Workers:     cfg.Workers,
	}

	results := batch.Run(batchCfg)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(results))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  frame %d: %s\n", e.Frame, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, batchCfg, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
