package texture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/decodeerr"
)

// loadExternal reads a zstd compressed KTX file named by a tag 47 record.
// The name must stay inside the asset's directory.
func (d *Decoder) loadExternal(name string) (*image.NRGBA, error) {
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return nil, decodeerr.TextureReference("external texture %q is outside the asset directory", name)
	}
	path := filepath.Join(d.Dir, filepath.FromSlash(name))
	return d.Cache.Resolve(path, func() (*image.NRGBA, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, decodeerr.TextureReference("external texture: %w", err)
		}
		data, err := d.Codec.Decompress(raw, codec.Zstandard, codec.Params{})
		if err != nil {
			return nil, &decodeerr.Error{Kind: decodeerr.KindDecompression, Err: fmt.Errorf("external texture %s: %w", path, err)}
		}
		return DecodeKTX(data, d.Codec)
	})
}
