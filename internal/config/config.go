package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable paths and decode settings.
type Config struct {
	// Paths
	InputDir  string   `json:"input_dir"`
	OutputDir string   `json:"output_dir"`
	Include   []string `json:"include"`
	Exclude   []string `json:"exclude"`

	// Decode settings
	Mode           string `json:"mode"` // "sc" or "tex"
	ImageFormat    string `json:"image_format"`
	MaxSize        int    `json:"max_size"`
	Workers        int    `json:"workers"`
	TextureWorkers int    `json:"texture_workers"`
	HighresSuffix  string `json:"highres_suffix"`
	LowresSuffix   string `json:"lowres_suffix"`
	CacheEntries   int    `json:"cache_entries"`
	Manifest       *bool  `json:"manifest"`
}

const (
	ModeSC  = "sc"
	ModeTex = "tex"
)

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

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir    string
	OutputDir   string
	Mode        string
	ImageFormat string
	MaxSize     int
	Workers     int
	NoManifest  bool
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.ImageFormat != "" {
		c.ImageFormat = flags.ImageFormat
	}
	if flags.MaxSize > 0 {
		c.MaxSize = flags.MaxSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.NoManifest {
		off := false
		c.Manifest = &off
	}

	if c.InputDir == "" {
		c.InputDir = "."
	}
	// Relative output dirs sit beside the input dir
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(filepath.Dir(filepath.Clean(c.InputDir)), "sc-out")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(filepath.Dir(filepath.Clean(c.InputDir)), c.OutputDir)
	}

	if c.Mode == "" {
		c.Mode = ModeSC
	}
	if len(c.Include) == 0 {
		if c.Mode == ModeTex {
			c.Include = []string{"**/*_tex.sc"}
		} else {
			c.Include = []string{"**/*.sc"}
		}
	}
	if c.Exclude == nil && c.Mode == ModeSC {
		c.Exclude = []string{"**/*_tex.sc"}
	}
	if c.ImageFormat == "" {
		c.ImageFormat = "png"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TextureWorkers <= 0 {
		c.TextureWorkers = 4
	}
	if c.HighresSuffix == "" {
		c.HighresSuffix = "_highres"
	}
	if c.LowresSuffix == "" {
		c.LowresSuffix = "_lowres"
	}
	if c.CacheEntries <= 0 {
		c.CacheEntries = 64
	}
	if c.Manifest == nil {
		on := true
		c.Manifest = &on
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	if c.Mode != ModeSC && c.Mode != ModeTex {
		return fmt.Errorf("config: mode %q is not %q or %q", c.Mode, ModeSC, ModeTex)
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("config: negative max_size %d", c.MaxSize)
	}
	if info, err := os.Stat(c.InputDir); err != nil {
		return fmt.Errorf("config: input dir: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("config: input dir %s is not a directory", c.InputDir)
	}
	return nil
}
