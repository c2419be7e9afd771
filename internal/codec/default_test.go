package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz/lzma"
)

func newDefault(t *testing.T) *Default {
	t.Helper()
	d, err := NewDefault()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return d
}

var sample = bytes.Repeat([]byte("shape movieclip texture "), 64)

func TestZstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	frame := enc.EncodeAll(sample, nil)
	enc.Close()

	out, err := newDefault(t).Decompress(frame, Zstandard, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, sample) {
		t.Errorf("zstd output differs")
	}
}

func TestLZMA(t *testing.T) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(sample); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := newDefault(t).Decompress(buf.Bytes(), LZMA, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, sample) {
		t.Errorf("lzma output differs")
	}
}

func TestCorruptStreams(t *testing.T) {
	d := newDefault(t)
	garbage := []byte{0x28, 0xB5, 0x2F, 0xFD, 1, 2, 3}
	for _, alg := range []Algorithm{Zstandard, LZMA} {
		t.Run(alg.String(), func(t *testing.T) {
			_, err := d.Decompress(garbage, alg, Params{})
			if !errors.Is(err, ErrCorruptStream) {
				t.Errorf("err = %v, want ErrCorruptStream", err)
			}
		})
	}
}

func TestUnsupported(t *testing.T) {
	d := newDefault(t)
	if _, err := d.Decompress(nil, Algorithm(99), Params{}); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("unknown algorithm: err = %v", err)
	}
	if _, err := d.Decompress([]byte{0}, LZHAM, Params{DictSizeLog2: 18, UncompressedSize: 4}); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("lzham dict 18: err = %v", err)
	}
}

func TestDecodeASTCVoidExtent(t *testing.T) {
	// LDR void-extent block: constant colour (R=1, G=0, B=1, A=1) in unorm16.
	block := []byte{
		0xFC, 0xFD, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF,
	}
	out, err := newDefault(t).DecodeASTC(block, 4, 4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4*4*4 {
		t.Fatalf("len = %d", len(out))
	}
	for i := 0; i < len(out); i += 4 {
		if got := [4]byte(out[i : i+4]); got != [4]byte{255, 0, 255, 255} {
			t.Fatalf("texel %d = %v", i/4, got)
		}
	}
}

func TestDecodeASTCBadSize(t *testing.T) {
	if _, err := newDefault(t).DecodeASTC(nil, 0, 4, 4, 4); !errors.Is(err, ErrCorruptStream) {
		t.Errorf("err = %v", err)
	}
}
