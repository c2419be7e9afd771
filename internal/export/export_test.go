package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

func opaqueGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 40), uint8(y * 60), 90, 255})
		}
	}
	return img
}

func TestEncodeDecodes(t *testing.T) {
	decoders := map[Format]func(io.Reader) (image.Image, error){
		PNG:  png.Decode,
		WebP: nativewebp.Decode,
		TGA:  tga.Decode,
		BMP:  bmp.Decode,
	}
	src := opaqueGradient(5, 3)
	for f, decode := range decoders {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, src, f); err != nil {
				t.Fatal(err)
			}
			got, err := decode(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if got.Bounds().Size() != src.Bounds().Size() {
				t.Fatalf("size = %v", got.Bounds().Size())
			}
			c := color.NRGBAModel.Convert(got.At(got.Bounds().Min.X+4, got.Bounds().Min.Y+2)).(color.NRGBA)
			if c != src.NRGBAAt(4, 2) {
				t.Errorf("pixel (4,2) = %v, want %v", c, src.NRGBAAt(4, 2))
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"PNG": PNG, ".webp": WebP, "tga": TGA, "": PNG} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("%q: got %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("jpeg"); err == nil {
		t.Errorf("jpeg accepted")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "t.png")
	if err := WriteFile(path, opaqueGradient(2, 2), PNG); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("stat = %v, %v", fi, err)
	}
}

func TestDownscale(t *testing.T) {
	img := opaqueGradient(64, 16)
	if Downscale(img, 0) != img || Downscale(img, 64) != img {
		t.Errorf("image that fits was resampled")
	}
	small := Downscale(img, 32)
	if small.Bounds() != image.Rect(0, 0, 32, 8) {
		t.Errorf("bounds = %v, want 32x8", small.Bounds())
	}
	tall := Downscale(opaqueGradient(3, 300), 100)
	if tall.Bounds() != image.Rect(0, 0, 1, 100) {
		t.Errorf("bounds = %v, want 1x100", tall.Bounds())
	}
}

func TestDownscaleNoDarkFringe(t *testing.T) {
	// Left half opaque red, right half transparent black.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}
	out := Downscale(img, 4)
	for x := 0; x < 4; x++ {
		c := out.NRGBAAt(x, 1)
		if c.A > 16 && c.R < 240 {
			t.Errorf("x=%d: %v darkened at the alpha edge", x, c)
		}
	}
}
