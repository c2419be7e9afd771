package batch

import (
	"encoding/json"
	"os"
	"time"
)

// Manifest is the summary written next to the exported images.
type Manifest struct {
	Generated time.Time `json:"generated"`
	InputDir  string    `json:"input_dir"`
	Format    string    `json:"image_format"`
	Files     []Result  `json:"files"`
}

// WriteManifest writes the results as indented JSON to path.
func WriteManifest(path string, cfg Config, results []Result) error {
	m := Manifest{
		Generated: time.Now().UTC(),
		InputDir:  cfg.InputDir,
		Format:    string(cfg.Format),
		Files:     results,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
