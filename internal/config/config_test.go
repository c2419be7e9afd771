package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	c := Config{InputDir: "/data/assets"}
	c.Resolve(Flags{})

	if c.OutputDir != filepath.FromSlash("/data/sc-out") {
		t.Errorf("output dir = %s", c.OutputDir)
	}
	if c.Mode != ModeSC || c.ImageFormat != "png" || c.TextureWorkers != 4 || c.CacheEntries != 64 {
		t.Errorf("defaults = %+v", c)
	}
	if c.Workers != runtime.NumCPU() {
		t.Errorf("workers = %d", c.Workers)
	}
	if !slices.Equal(c.Include, []string{"**/*.sc"}) || !slices.Equal(c.Exclude, []string{"**/*_tex.sc"}) {
		t.Errorf("patterns = %v / %v", c.Include, c.Exclude)
	}
	if c.HighresSuffix != "_highres" || c.LowresSuffix != "_lowres" {
		t.Errorf("suffixes = %q %q", c.HighresSuffix, c.LowresSuffix)
	}
	if c.Manifest == nil || !*c.Manifest {
		t.Errorf("manifest not on by default")
	}
}

func TestResolveTexMode(t *testing.T) {
	c := Config{InputDir: "in", Mode: ModeTex}
	c.Resolve(Flags{})
	if !slices.Equal(c.Include, []string{"**/*_tex.sc"}) || c.Exclude != nil {
		t.Errorf("patterns = %v / %v", c.Include, c.Exclude)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"input_dir": "/a", "output_dir": "out", "image_format": "webp", "workers": 3, "manifest": true}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	c.Resolve(Flags{ImageFormat: "tga", Workers: 8, NoManifest: true})

	if c.ImageFormat != "tga" || c.Workers != 8 || *c.Manifest {
		t.Errorf("flags not applied: %+v", c)
	}
	if c.OutputDir != filepath.FromSlash("/out") {
		t.Errorf("relative output dir = %s", c.OutputDir)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("missing file accepted")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := Load(path); err == nil {
		t.Errorf("bad json accepted")
	}
}

func TestValidate(t *testing.T) {
	c := Config{InputDir: t.TempDir()}
	c.Resolve(Flags{})
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	c.Mode = "swf"
	if err := c.Validate(); err == nil {
		t.Errorf("mode swf accepted")
	}
	c.Mode = ModeSC
	c.InputDir = filepath.Join(c.InputDir, "nope")
	if err := c.Validate(); err == nil {
		t.Errorf("missing input dir accepted")
	}
}
