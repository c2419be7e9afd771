// Package tiles reorders textures stored as 32x32 tiles into row-major order.
//
// Source order: tile bands from top to bottom; inside a band, full-width tiles
// from left to right followed by the partial tile at the right edge; inside a
// tile, rows from top to bottom. The band at the bottom edge is height%32 tall.
package tiles

import "fmt"

const (
	TileSize = 32
	bpp      = 4
)

// Reconstruct returns src, a tile-ordered RGBA8 buffer of width*height pixels,
// in row-major order.
func Reconstruct(src []byte, width, height int) ([]byte, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("tiles: invalid size %dx%d", width, height)
	}
	if want := width * height * bpp; len(src) != want {
		return nil, fmt.Errorf("tiles: %dx%d texture needs %d bytes, got %d", width, height, want, len(src))
	}

	dst := make([]byte, len(src))
	consumed := 0
	copyRow := func(x, y, n int) {
		off := (y*width + x) * bpp
		consumed += copy(dst[off:off+n*bpp], src[consumed:consumed+n*bpp])
	}
	band := func(y0, rows int) {
		for col := 0; col < width/TileSize; col++ {
			for j := 0; j < rows; j++ {
				copyRow(col*TileSize, y0+j, TileSize)
			}
		}
		if rem := width % TileSize; rem > 0 {
			for j := 0; j < rows; j++ {
				copyRow(width-rem, y0+j, rem)
			}
		}
	}

	for b := 0; b < height/TileSize; b++ {
		band(b*TileSize, TileSize)
	}
	if rem := height % TileSize; rem > 0 {
		band(height-rem, rem)
	}

	if consumed != len(src) {
		return nil, fmt.Errorf("tiles: consumed %d of %d bytes", consumed, len(src))
	}
	return dst, nil
}
