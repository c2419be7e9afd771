// Package pixel converts the raw per-pixel encodings of SC textures to RGBA8.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
)

// Format is the pixel encoding code stored in a texture record.
type Format uint8

const (
	RGBA8888  Format = 0
	RGBA8888b Format = 1
	RGBA4444  Format = 2
	RGBA5551  Format = 3
	RGB565    Format = 4
	LA88      Format = 6
	L8        Format = 10
	// KTX marks a KTX/ASTC container rather than raw pixels.
	KTX Format = 15
)

// ErrUnknownFormat is wrapped by every error about an unsupported code.
var ErrUnknownFormat = errors.New("pixel: unknown pixel format")

func (f Format) String() string {
	switch f {
	case RGBA8888, RGBA8888b:
		return "RGBA8888"
	case RGBA4444:
		return "RGBA4444"
	case RGBA5551:
		return "RGBA5551"
	case RGB565:
		return "RGB565"
	case LA88:
		return "LA88"
	case L8:
		return "L8"
	case KTX:
		return "KTX"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Width returns the number of bytes one pixel occupies.
// KTX has no per-pixel width and is reported as an error.
func Width(f Format) (int, error) {
	switch f {
	case RGBA8888, RGBA8888b:
		return 4, nil
	case RGBA4444, RGBA5551, RGB565, LA88:
		return 2, nil
	case L8:
		return 1, nil
	case KTX:
		return 0, fmt.Errorf("%w: %d is a block-compressed container", ErrUnknownFormat, uint8(f))
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownFormat, uint8(f))
}

// Convert decodes one pixel. raw must hold exactly Width(f) bytes.
func Convert(raw []byte, f Format) (color.NRGBA, error) {
	w, err := Width(f)
	if err != nil {
		return color.NRGBA{}, err
	}
	if len(raw) != w {
		return color.NRGBA{}, fmt.Errorf("pixel: %v needs %d bytes, got %d", f, w, len(raw))
	}
	var px [4]byte
	convert(px[:], raw, f)
	return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}, nil
}

// Decode converts a whole buffer of raw pixels into dst as RGBA8.
// len(dst) must be 4 * len(src) / Width(f).
func Decode(dst, src []byte, f Format) error {
	w, err := Width(f)
	if err != nil {
		return err
	}
	if len(src)%w != 0 || len(dst) != len(src)/w*4 {
		return fmt.Errorf("pixel: %v buffer sizes src=%d dst=%d do not match", f, len(src), len(dst))
	}
	for i, o := 0, 0; i < len(src); i, o = i+w, o+4 {
		convert(dst[o:o+4], src[i:i+w], f)
	}
	return nil
}

func convert(dst, raw []byte, f Format) {
	switch f {
	case RGBA8888, RGBA8888b:
		copy(dst, raw[:4])
	case RGBA4444:
		p := binary.LittleEndian.Uint16(raw)
		dst[0] = byte(p>>12&0xF) << 4
		dst[1] = byte(p>>8&0xF) << 4
		dst[2] = byte(p>>4&0xF) << 4
		dst[3] = byte(p&0xF) << 4
	case RGBA5551:
		p := binary.LittleEndian.Uint16(raw)
		dst[0] = byte(p>>11&0x1F) << 3
		dst[1] = byte(p>>6&0x1F) << 3
		dst[2] = byte(p>>1&0x1F) << 3
		dst[3] = byte(p&1) << 7
	case RGB565:
		p := binary.LittleEndian.Uint16(raw)
		dst[0] = byte(p>>11&0x1F) << 3
		dst[1] = byte(p>>5&0x3F) << 2
		dst[2] = byte(p&0x1F) << 3
		dst[3] = 0xFF
	case LA88:
		p := binary.LittleEndian.Uint16(raw)
		l := byte(p >> 8)
		dst[0], dst[1], dst[2] = l, l, l
		dst[3] = byte(p)
	case L8:
		dst[0], dst[1], dst[2] = raw[0], raw[0], raw[0]
		dst[3] = 0xFF
	}
}
