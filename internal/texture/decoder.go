package texture

import (
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/decodeerr"
	"sc-asset-extractor/internal/ktx"
	"sc-asset-extractor/internal/pixel"
	"sc-asset-extractor/internal/tiles"
)

// Decoder turns texture records into RGBA images.
// It holds no per-asset state and is safe for concurrent use.
type Decoder struct {
	Codec codec.Service
	// Dir is the directory external paths are resolved against.
	Dir string
	// Cache is optional.
	Cache *Cache
}

// Job pairs a texture slot with the record that fills it.
type Job struct {
	Texture *Texture
	Record  Record
}

// Assign copies the record's metadata into the slot.
func (t *Texture) Assign(rec *Record) {
	t.Tag = rec.Tag
	t.Format = rec.Format
	t.Width = rec.Width
	t.Height = rec.Height
	t.External = rec.External
}

// Decode decodes one record.
func (d *Decoder) Decode(rec *Record) (*image.NRGBA, error) {
	switch {
	case rec.External != "":
		return d.loadExternal(rec.External)
	case rec.KTX:
		return DecodeKTX(rec.Data, d.Codec)
	}
	return decodeRaw(rec)
}

// DecodeAll decodes jobs on up to workers goroutines. A failing external
// reference only marks its own texture; any other failure is returned.
func (d *Decoder) DecodeAll(jobs []Job, workers int) error {
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, j := range jobs {
		if !j.Record.HasPixels() {
			continue
		}
		g.Go(func() error {
			img, err := d.Decode(&j.Record)
			if err != nil {
				if j.Record.External != "" {
					j.Texture.Err = err
					log.Warn().Err(err).Int("texture", j.Texture.Index).Msg("external texture not loaded")
					return nil
				}
				return fmt.Errorf("texture %d (%s): %w", j.Texture.Index, &j.Record, err)
			}
			j.Texture.Image = img
			return nil
		})
	}
	return g.Wait()
}

func decodeRaw(rec *Record) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, rec.Width, rec.Height))
	if err := pixel.Decode(img.Pix, rec.Data, rec.Format); err != nil {
		return nil, decodeerr.TagStream("%w", err)
	}
	if Tiled(rec.Tag) {
		pix, err := tiles.Reconstruct(img.Pix, rec.Width, rec.Height)
		if err != nil {
			return nil, decodeerr.TagStream("%w", err)
		}
		img.Pix = pix
	}
	return img, nil
}

// DecodeKTX decodes a KTX file holding ASTC blocks.
func DecodeKTX(data []byte, svc codec.Service) (*image.NRGBA, error) {
	t, err := ktx.Parse(data)
	if err != nil {
		return nil, decodeerr.TagStream("%w", err)
	}
	pix, err := svc.DecodeASTC(t.Data, t.Width, t.Height, t.BlockW, t.BlockH)
	if err != nil {
		return nil, &decodeerr.Error{Kind: decodeerr.KindDecompression, Err: fmt.Errorf("astc %dx%d: %w", t.BlockW, t.BlockH, err)}
	}
	if len(pix) != t.Width*t.Height*4 {
		return nil, decodeerr.Decompression("astc decoder returned %d bytes for %dx%d", len(pix), t.Width, t.Height)
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: t.Width * 4,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}, nil
}
