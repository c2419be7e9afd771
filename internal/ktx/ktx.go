// Package ktx reads KTX 1.1 containers holding ASTC compressed textures.
package ktx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const headerSize = 64

var identifier = []byte{0xAB, 'K', 'T', 'X', ' ', '1', '1', 0xBB, '\r', '\n', 0x1A, '\n'}

// ErrUnsupported is wrapped when the container or its format cannot be decoded.
var ErrUnsupported = errors.New("ktx: unsupported texture")

// Texture is the first mip level of a KTX file.
type Texture struct {
	InternalFormat uint32
	Width, Height  int
	BlockW, BlockH int
	// Data holds the ASTC blocks of mip level 0.
	Data []byte
}

// glInternalFormat -> ASTC footprint; the sRGB variants are 0x20 higher.
var footprints = map[uint32][2]int{
	0x93B0: {4, 4},
	0x93B1: {5, 4},
	0x93B2: {5, 5},
	0x93B3: {6, 5},
	0x93B4: {6, 6},
	0x93B5: {8, 5},
	0x93B6: {8, 6},
	0x93B7: {8, 8},
	0x93B8: {10, 5},
	0x93B9: {10, 6},
	0x93BA: {10, 8},
	0x93BB: {10, 10},
	0x93BC: {12, 10},
	0x93BD: {12, 12},
}

func footprint(internalFormat uint32) ([2]int, bool) {
	if fp, ok := footprints[internalFormat]; ok {
		return fp, true
	}
	fp, ok := footprints[internalFormat-0x20]
	return fp, ok && internalFormat >= 0x93D0
}

// Parse reads the header and the first image of a KTX file.
func Parse(data []byte) (*Texture, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("ktx: header needs %d bytes, got %d", headerSize, len(data))
	}
	if !bytes.Equal(data[:len(identifier)], identifier) {
		return nil, fmt.Errorf("%w: bad identifier % x", ErrUnsupported, data[:len(identifier)])
	}

	var order binary.ByteOrder = binary.LittleEndian
	switch binary.LittleEndian.Uint32(data[12:16]) {
	case 0x04030201:
	case 0x01020304:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("ktx: bad endianness marker % x", data[12:16])
	}

	t := &Texture{InternalFormat: order.Uint32(data[28:32])}
	width := order.Uint32(data[36:40])
	height := order.Uint32(data[40:44])
	kvLen := uint64(order.Uint32(data[60:64]))

	fp, ok := footprint(t.InternalFormat)
	if !ok {
		return nil, fmt.Errorf("%w: glInternalFormat %#x", ErrUnsupported, t.InternalFormat)
	}
	t.BlockW, t.BlockH = fp[0], fp[1]
	if height == 0 {
		height = 1
	}
	if width == 0 || width > 1<<16 || height > 1<<16 {
		return nil, fmt.Errorf("ktx: invalid size %dx%d", width, height)
	}
	t.Width, t.Height = int(width), int(height)

	off := headerSize + kvLen
	if off+4 > uint64(len(data)) {
		return nil, fmt.Errorf("ktx: key/value data (%d bytes) runs past end of file", kvLen)
	}
	imageSize := uint64(order.Uint32(data[off : off+4]))
	off += 4
	if off+imageSize > uint64(len(data)) {
		return nil, fmt.Errorf("ktx: image of %d bytes runs past end of file", imageSize)
	}
	t.Data = data[off : off+imageSize]

	blocksX := (t.Width + t.BlockW - 1) / t.BlockW
	blocksY := (t.Height + t.BlockH - 1) / t.BlockH
	if need := blocksX * blocksY * 16; len(t.Data) < need {
		return nil, fmt.Errorf("ktx: %dx%d image with %dx%d blocks needs %d bytes, got %d",
			t.Width, t.Height, t.BlockW, t.BlockH, need, len(t.Data))
	}
	return t, nil
}
