package codec

import (
	"bytes"
	"fmt"
	"io"

	astc "github.com/am-sokolov/go-astc-encoder"
	"github.com/klauspost/compress/zstd"
	"github.com/pg9182/tf2lzham"
	"github.com/ulikunitz/xz/lzma"
)

// tf2lzham is built for a single stream configuration.
const lzhamDictSizeLog2 = 20

// Default is the Service backed by pure-Go decoders.
type Default struct {
	zstd *zstd.Decoder
}

func NewDefault() (*Default, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("codec: init zstd: %w", err)
	}
	return &Default{zstd: dec}, nil
}

// Close releases the zstd decoder.
func (d *Default) Close() {
	d.zstd.Close()
}

func (d *Default) Decompress(data []byte, alg Algorithm, p Params) ([]byte, error) {
	switch alg {
	case Zstandard:
		out, err := d.zstd.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptStream, err)
		}
		return out, nil
	case LZMA:
		return decompressLZMA(data)
	case LZHAM:
		return decompressLZHAM(data, p)
	case None:
		return data, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, alg)
}

// decompressLZMA expects a classic .lzma stream: 5 property bytes, an 8-byte
// little-endian size, then the range-coded data.
func decompressLZMA(data []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma header: %v", ErrCorruptStream, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: lzma: %v", ErrCorruptStream, err)
	}
	return out, nil
}

func decompressLZHAM(data []byte, p Params) ([]byte, error) {
	if p.DictSizeLog2 != lzhamDictSizeLog2 {
		return nil, fmt.Errorf("%w: lzham dictionary 2^%d", ErrUnsupportedAlgorithm, p.DictSizeLog2)
	}
	if p.UncompressedSize < 0 {
		return nil, fmt.Errorf("%w: lzham size %d", ErrCorruptStream, p.UncompressedSize)
	}
	dst := make([]byte, p.UncompressedSize)
	n, _, _, err := tf2lzham.Decompress(dst, data)
	if err != nil {
		return nil, fmt.Errorf("%w: lzham: %v", ErrCorruptStream, err)
	}
	if n != len(dst) {
		return nil, fmt.Errorf("%w: lzham produced %d of %d bytes", ErrCorruptStream, n, len(dst))
	}
	return dst, nil
}

var rgba = astc.Swizzle{R: astc.SwzR, G: astc.SwzG, B: astc.SwzB, A: astc.SwzA}

// DecodeASTC decodes LDR ASTC blocks into RGBA8.
func (d *Default) DecodeASTC(data []byte, width, height, blockW, blockH int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: astc image %dx%d", ErrCorruptStream, width, height)
	}
	cfg, err := astc.ConfigInit(astc.ProfileLDR, blockW, blockH, 1, 0, astc.FlagDecompressOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: astc %dx%d: %v", ErrUnsupportedAlgorithm, blockW, blockH, err)
	}
	ctx, err := astc.ContextAlloc(&cfg, 1)
	if err != nil {
		return nil, fmt.Errorf("codec: astc context: %w", err)
	}
	defer ctx.Close()

	img := &astc.Image{
		DimX:     width,
		DimY:     height,
		DimZ:     1,
		DataType: astc.TypeU8,
		DataU8:   make([]byte, width*height*4),
	}
	if err := ctx.DecompressImage(data, img, rgba, 0); err != nil {
		return nil, fmt.Errorf("%w: astc: %v", ErrCorruptStream, err)
	}
	return img.DataU8, nil
}
