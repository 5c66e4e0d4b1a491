package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir   string `json:"base_dir"`
	RoomPRM   string `json:"room_prm"`
	ActorSKM  string `json:"actor_skm"`
	OutputDir string `json:"output_dir"`

	// Render settings
	Supersample int `json:"supersample"`
	WebPQuality int `json:"webp_quality"`
	Workers     int `json:"workers"`
	Frames      int `json:"frames"`

	// Camera defaults (binary angles, 0x10000 = full turn)
	CameraYaw   int32 `json:"camera_yaw"`
	CameraPitch int32 `json:"camera_pitch"`
	CameraDist  int32 `json:"camera_dist"`

	// Ambient fill for black untextured vertices
	AmbientR uint8 `json:"ambient_r"`
	AmbientG uint8 `json:"ambient_g"`
	AmbientB uint8 `json:"ambient_b"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.RoomPRM != "" {
		c.RoomPRM = flags.RoomPRM
	}
	if flags.ActorSKM != "" {
		c.ActorSKM = flags.ActorSKM
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		if c.RoomPRM != "" && !filepath.IsAbs(c.RoomPRM) {
			c.RoomPRM = filepath.Join(c.BaseDir, c.RoomPRM)
		}
		if c.ActorSKM != "" && !filepath.IsAbs(c.ActorSKM) {
			c.ActorSKM = filepath.Join(c.BaseDir, c.ActorSKM)
		}
		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.BaseDir, "renders")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
		}
	}

	// Defaults for render settings
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.CameraDist <= 0 {
		c.CameraDist = 600
	}
	if c.AmbientR == 0 && c.AmbientG == 0 && c.AmbientB == 0 {
		c.AmbientR, c.AmbientG, c.AmbientB = 80, 80, 80
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	RoomPRM   string
	ActorSKM  string
	OutputDir string
	Quality   int
	Workers   int
	Frames    int
}
