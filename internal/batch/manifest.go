package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry describes one rendered frame in the output manifest.
type ManifestEntry struct {
	Frame     int    `json:"frame"`
	Anim      int    `json:"anim"`
	CameraYaw int32  `json:"camera_yaw"`
	Tris      int    `json:"tris"`
	Image     string `json:"image"`
	Error     string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json describing a rendered sequence.
func WriteManifest(path string, cfg Config, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Frame:     r.Frame,
			Anim:      cfg.Anim,
			CameraYaw: cfg.Camera.Yaw + cfg.YawStep*int32(r.Frame),
			Tris:      r.Tris,
			Image:     fmt.Sprintf("frame_%04d.webp", r.Frame),
			Error:     r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
