package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		"base_dir": "` + dir + `",
		"room_prm": "assets/room.prm",
		"supersample": 4,
		"camera_dist": 900
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Resolve(Flags{})

	if cfg.RoomPRM != filepath.Join(dir, "assets", "room.prm") {
		t.Errorf("RoomPRM = %q, not resolved against base dir", cfg.RoomPRM)
	}
	if cfg.OutputDir != filepath.Join(dir, "renders") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Supersample != 4 {
		t.Errorf("Supersample = %d, want 4 (from file)", cfg.Supersample)
	}
	if cfg.CameraDist != 900 {
		t.Errorf("CameraDist = %d, want 900", cfg.CameraDist)
	}
	if cfg.WebPQuality != 90 || cfg.Frames != 1 {
		t.Errorf("defaults: quality=%d frames=%d", cfg.WebPQuality, cfg.Frames)
	}
	if cfg.AmbientR != 80 || cfg.AmbientG != 80 || cfg.AmbientB != 80 {
		t.Errorf("ambient = (%d,%d,%d)", cfg.AmbientR, cfg.AmbientG, cfg.AmbientB)
	}
}

func TestFlagsOverride(t *testing.T) {
	cfg := Config{WebPQuality: 50, Workers: 2}
	cfg.Resolve(Flags{Quality: 95, Workers: 8, Frames: 30, OutputDir: "/tmp/out"})

	if cfg.WebPQuality != 95 {
		t.Errorf("WebPQuality = %d, want flag value 95", cfg.WebPQuality)
	}
	if cfg.Workers != 8 || cfg.Frames != 30 {
		t.Errorf("workers=%d frames=%d", cfg.Workers, cfg.Frames)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
