package batch

import (
	"encoding/binary"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zstd"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/export"
	"sc-asset-extractor/internal/sc"
	"sc-asset-extractor/internal/texture"
)

func touch(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"ui.sc", "ui_tex.sc", "sub/chars.sc", "sub/chars_tex.sc", "readme.txt", "deep/a/b/c.sc"} {
		touch(t, filepath.Join(root, filepath.FromSlash(f)), nil)
	}

	got, err := Discover(root, []string{"**/*.sc"}, []string{"**/*_tex.sc"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"deep/a/b/c.sc", "sub/chars.sc", "ui.sc"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = Discover(root, []string{"**/*_tex.sc"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"sub/chars_tex.sc", "ui_tex.sc"}) {
		t.Errorf("tex mode got %v", got)
	}

	if _, err := Discover(root, []string{"[unclosed"}, nil); err == nil {
		t.Errorf("bad pattern accepted")
	}
}

// asset returns a zstd frame holding a regular asset with one 2x2 RGBA
// texture and one exported movie clip.
func asset(t *testing.T) []byte {
	le := binary.LittleEndian
	var p []byte
	p = le.AppendUint16(p, 0) // shapes
	p = le.AppendUint16(p, 1) // clips
	p = le.AppendUint16(p, 1) // textures
	p = le.AppendUint16(p, 0)
	p = le.AppendUint16(p, 0)
	p = le.AppendUint16(p, 0)
	p = append(p, 0, 0, 0, 0, 0)
	p = le.AppendUint16(p, 1)
	p = le.AppendUint16(p, 9)
	p = append(p, 4, 'i', 'd', 'l', 'e')

	tex := []byte{0}
	tex = le.AppendUint16(tex, 2)
	tex = le.AppendUint16(tex, 2)
	tex = append(tex, 255, 0, 0, 255, 0, 255, 0, 255, 0, 0, 255, 255, 9, 9, 9, 128)
	p = append(p, 1)
	p = le.AppendUint32(p, uint32(len(tex)))
	p = append(p, tex...)

	clip := le.AppendUint16(nil, 9)
	clip = append(clip, 30, 1, 0)
	p = append(p, 3)
	p = le.AppendUint32(p, uint32(len(clip)))
	p = append(p, clip...)

	p = append(p, 0, 0, 0, 0, 0)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(p, nil)
}

func TestRun(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	touch(t, filepath.Join(in, "level", "map.sc"), asset(t))
	touch(t, filepath.Join(in, "broken.sc"), []byte("SC\x00\x00\x00\x04"))

	c, err := codec.NewDefault()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	cfg := Config{
		InputDir:  in,
		OutputDir: out,
		Format:    export.PNG,
		Workers:   2,
		Decode:    sc.Options{Codec: c, Cache: texture.NewCache(8), Workers: 2},
	}
	files, err := Discover(in, []string{"**/*.sc"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	results := Run(cfg, files)
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	broken, good := results[0], results[1]
	if broken.File != "broken.sc" || broken.Success || broken.Error == "" {
		t.Errorf("broken file result = %+v", broken)
	}
	if !good.Success || good.Compression != "zstd" || good.MovieClips != 1 || !slices.Equal(good.Exports, []string{"idle"}) {
		t.Fatalf("good file result = %+v", good)
	}
	if len(good.Textures) != 1 || good.Textures[0].Image != "level/map_0.png" || good.Textures[0].Hash == "" {
		t.Fatalf("texture entries = %+v", good.Textures)
	}

	f, err := os.Open(filepath.Join(out, "level", "map_0.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(1, 0).RGBA(); r != 0 || g != 0xFFFF || b != 0 {
		t.Errorf("pixel (1,0) = %d %d %d, want green", r, g, b)
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := WriteManifest(manifest, cfg, results); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Files) != 2 || m.Files[1].Textures[0].Width != 2 || m.Format != "png" {
		t.Errorf("manifest = %+v", m)
	}
}
