// Package manifest writes the per-frame sidecar listing of a conversion run.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry records one converted frame.
type Entry struct {
	Ordinal     int     `json:"ordinal"`
	File        string  `json:"file"`
	FrameNumber *int    `json:"frame_number"` // nil when the filename has none
	Time        float64 `json:"time"`
	Vertices    int     `json:"vertices"`
	Faces       int     `json:"faces"`
}

// Manifest is the document written next to the cache.
type Manifest struct {
	Cache      string  `json:"cache"`
	SampleRate float64 `json:"sample_rate"`
	Frames     []Entry `json:"frames"`
}

// Write writes m as indented JSON to path.
func Write(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("manifest: write %s: %w", path, err)
	}
	return nil
}

// Load reads a manifest written by Write.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: parse %s: %w", path, err)
	}
	return m, nil
}
