package texture

import (
	"fmt"
	"image"

	"sc-asset-extractor/internal/bytestream"
	"sc-asset-extractor/internal/decodeerr"
	"sc-asset-extractor/internal/pixel"
)

// Tag codes with a texture layout of their own.
const (
	TagKTX         int8 = 45 // size-prefixed embedded KTX
	TagExternalKTX int8 = 47 // path to a zstd compressed KTX beside the asset
)

// Tiled reports whether textures of this tag are stored in 32x32 tiles.
func Tiled(tag int8) bool {
	return tag == 27 || tag == 28 || tag == 29
}

// Texture is one texture slot of an asset.
type Texture struct {
	Index  int
	Tag    int8
	Format pixel.Format
	Width  int
	Height int

	// Image is nil until decoded, and stays nil for metadata-only records.
	Image *image.NRGBA
	// External is the referenced path for tag 47 records, as stored.
	External string
	// Err holds a failure scoped to this texture alone.
	Err error
}

// Loaded reports whether the slot has been filled by a texture tag.
func (t *Texture) Loaded() bool { return t.Tag != 0 }

// Record is the undecoded content of a texture tag.
type Record struct {
	Tag    int8
	Format pixel.Format
	Width  int
	Height int
	// Data holds raw pixels or, for KTX records, the KTX file.
	Data     []byte
	KTX      bool
	External string
}

// HasPixels reports whether decoding the record produces an image.
func (rec *Record) HasPixels() bool {
	return rec.Data != nil || rec.External != ""
}

// ReadRecord reads the body of a texture tag. When hasPixels is false the
// default layout stops after the dimensions.
func ReadRecord(r *bytestream.Reader, tag int8, hasPixels bool) (Record, error) {
	rec := Record{Tag: tag}
	readDims := func() {
		rec.Format = pixel.Format(r.U8())
		rec.Width = int(r.U16())
		rec.Height = int(r.U16())
	}

	switch tag {
	case TagKTX:
		size := r.U32()
		readDims()
		rec.Data = r.Bytes(int(size))
		rec.KTX = true
	case TagExternalKTX:
		n := r.U8()
		rec.External = string(r.Bytes(int(n)))
		readDims()
		rec.KTX = true
	default:
		readDims()
		if !hasPixels || r.Err() != nil {
			break
		}
		if rec.Format == pixel.KTX {
			rec.Data = r.Bytes(int(r.U32()))
			rec.KTX = true
			break
		}
		w, err := pixel.Width(rec.Format)
		if err != nil {
			return rec, decodeerr.TagStream("texture tag %d: %w", tag, err)
		}
		rec.Data = r.Bytes(rec.Width * rec.Height * w)
	}

	if err := r.Err(); err != nil {
		return rec, decodeerr.TagStream("texture tag %d: %w", tag, err)
	}
	if rec.External == "" && tag == TagExternalKTX {
		return rec, decodeerr.TagStream("texture tag %d: empty external path", tag)
	}
	return rec, nil
}

func (rec *Record) String() string {
	switch {
	case rec.External != "":
		return fmt.Sprintf("external %s %dx%d", rec.External, rec.Width, rec.Height)
	case rec.KTX:
		return fmt.Sprintf("ktx %d bytes %dx%d", len(rec.Data), rec.Width, rec.Height)
	}
	return fmt.Sprintf("%v %dx%d", rec.Format, rec.Width, rec.Height)
}
