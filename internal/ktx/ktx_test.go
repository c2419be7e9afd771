package ktx

import (
	"encoding/binary"
	"errors"
	"testing"
)

// build returns a little-endian KTX 1.1 file with one image of blocks.
func build(internalFormat, width, height uint32, kv []byte, blocks []byte) []byte {
	h := make([]byte, headerSize)
	copy(h, identifier)
	le := binary.LittleEndian
	le.PutUint32(h[12:], 0x04030201)
	le.PutUint32(h[28:], internalFormat)
	le.PutUint32(h[36:], width)
	le.PutUint32(h[40:], height)
	le.PutUint32(h[56:], 1)
	le.PutUint32(h[60:], uint32(len(kv)))
	out := append(h, kv...)
	out = le.AppendUint32(out, uint32(len(blocks)))
	return append(out, blocks...)
}

func TestParse(t *testing.T) {
	blocks := make([]byte, 4*16) // 8x8 image of 4x4 blocks
	file := build(0x93B0, 8, 8, []byte("keyvalue"), blocks)
	tex, err := Parse(file)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 8 || tex.Height != 8 || tex.BlockW != 4 || tex.BlockH != 4 {
		t.Errorf("got %+v", tex)
	}
	if len(tex.Data) != len(blocks) {
		t.Errorf("data len = %d", len(tex.Data))
	}
}

func TestFootprints(t *testing.T) {
	cases := map[uint32][2]int{
		0x93B0: {4, 4},
		0x93B4: {6, 6},
		0x93B7: {8, 8},
		0x93D7: {8, 8}, // sRGB
		0x93BD: {12, 12},
	}
	for f, want := range cases {
		got, ok := footprint(f)
		if !ok || got != want {
			t.Errorf("%#x: got %v %v, want %v", f, got, ok, want)
		}
	}
	if _, ok := footprint(0x8058); ok {
		t.Errorf("RGBA8 treated as ASTC")
	}
}

func TestParseErrors(t *testing.T) {
	good := build(0x93B7, 8, 8, nil, make([]byte, 16))

	badID := append([]byte(nil), good...)
	badID[1] = 'X'

	cases := map[string][]byte{
		"short":      good[:10],
		"identifier": badID,
		"format":     build(0x8058, 4, 4, nil, make([]byte, 64)),
		"truncated":  good[:len(good)-1],
		"few blocks": build(0x93B0, 16, 16, nil, make([]byte, 16)),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(data); err == nil {
				t.Errorf("accepted")
			}
		})
	}

	_, err := Parse(build(0x8058, 4, 4, nil, nil))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}
