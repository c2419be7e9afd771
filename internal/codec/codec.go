// Package codec is the boundary to the general-purpose decompressors and the
// ASTC block decoder. The asset core only talks to Service; Default wires the
// concrete libraries.
package codec

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedAlgorithm = errors.New("codec: unsupported algorithm")
	ErrCorruptStream        = errors.New("codec: corrupt stream")
)

// Algorithm names a compression family.
type Algorithm int

const (
	None Algorithm = iota
	LZMA
	LZHAM
	Zstandard
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case LZMA:
		return "lzma"
	case LZHAM:
		return "lzham"
	case Zstandard:
		return "zstd"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Params carries the out-of-band values some containers declare.
// Only LZHAM uses them.
type Params struct {
	DictSizeLog2     int
	UncompressedSize int
}

// Service decompresses streams and decodes ASTC block data.
// Implementations must be safe for concurrent use.
type Service interface {
	Decompress(data []byte, alg Algorithm, p Params) ([]byte, error)
	// DecodeASTC returns width*height*4 bytes of RGBA8.
	DecodeASTC(data []byte, width, height, blockW, blockH int) ([]byte, error)
}
