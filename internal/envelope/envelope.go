// Package envelope strips the outer SC framing and inner compression from an
// asset file.
package envelope

import (
	"bytes"
	"encoding/binary"

	"github.com/rs/zerolog/log"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/decodeerr"
)

var (
	headerMagic = []byte("SC")
	lzhamMagic  = []byte("SCLZ")
	zstdMagic   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	metaMarker  = []byte("START")
)

const (
	extendedVersion = 4

	// v4: magic(2) version(4) inner version(4) hash length(4)
	extendedHeaderSize = 14
	// other versions: magic(2) version(4) hash length(4)
	simpleHeaderSize = 10
	// bytes between the payload and the end block in v4 files
	endBlockPadding = 9

	// SCLZ: magic(4) dict size log2(1) uncompressed size(4, LE)
	lzhamHeaderSize = 9
	// raw LZMA: props(5) size(4, LE); the codec wants an 8-byte size
	lzmaSizeOffset = 9
)

// Payload is the decompressed body of an asset file.
type Payload struct {
	Data      []byte
	Algorithm codec.Algorithm
	// HasHeader is false when the file carried no SC framing.
	HasHeader bool
	// Version is the outer version, or for v4 files the inner format version.
	Version uint32
}

// StripMetadata drops everything from the first "START" marker onward.
func StripMetadata(raw []byte) []byte {
	if i := bytes.Index(raw, metaMarker); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Unwrap removes the SC header (if any), detects the inner compression and
// decompresses the payload through svc.
func Unwrap(raw []byte, svc codec.Service) (*Payload, error) {
	p := &Payload{}
	body := raw

	if bytes.HasPrefix(raw, headerMagic) {
		var err error
		body, err = stripHeader(raw, p)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case bytes.HasPrefix(body, lzhamMagic):
		if len(body) < lzhamHeaderSize {
			return nil, decodeerr.Envelope("truncated SCLZ header: %d bytes", len(body))
		}
		params := codec.Params{
			DictSizeLog2:     int(body[4]),
			UncompressedSize: int(binary.LittleEndian.Uint32(body[5:9])),
		}
		p.Algorithm = codec.LZHAM
		return decompress(p, body[lzhamHeaderSize:], params, svc)
	case bytes.HasPrefix(body, zstdMagic):
		p.Algorithm = codec.Zstandard
		return decompress(p, body, codec.Params{}, svc)
	default:
		if len(body) < lzmaSizeOffset {
			return nil, decodeerr.Envelope("truncated LZMA header: %d bytes", len(body))
		}
		stream := make([]byte, 0, len(body)+4)
		stream = append(stream, body[:lzmaSizeOffset]...)
		stream = append(stream, 0, 0, 0, 0)
		stream = append(stream, body[lzmaSizeOffset:]...)
		p.Algorithm = codec.LZMA
		return decompress(p, stream, codec.Params{}, svc)
	}
}

func stripHeader(raw []byte, p *Payload) ([]byte, error) {
	p.HasHeader = true
	if len(raw) < simpleHeaderSize {
		return nil, decodeerr.Envelope("truncated header: %d bytes", len(raw))
	}
	version := binary.BigEndian.Uint32(raw[2:6])

	if version != extendedVersion {
		p.Version = version
		hashLen := uint64(binary.BigEndian.Uint32(raw[6:10]))
		start := simpleHeaderSize + hashLen
		if start > uint64(len(raw)) {
			return nil, decodeerr.Envelope("hash length %d exceeds file size %d", hashLen, len(raw))
		}
		return raw[start:], nil
	}

	if len(raw) < extendedHeaderSize+4 {
		return nil, decodeerr.Envelope("truncated v4 header: %d bytes", len(raw))
	}
	p.Version = binary.BigEndian.Uint32(raw[6:10])
	hashLen := uint64(binary.BigEndian.Uint32(raw[10:14]))
	endBlock := uint64(binary.BigEndian.Uint32(raw[len(raw)-4:]))

	start := extendedHeaderSize + hashLen
	trim := endBlock + endBlockPadding
	if trim > uint64(len(raw)) {
		return nil, decodeerr.Envelope("end block size %d exceeds file size %d", endBlock, len(raw))
	}
	end := uint64(len(raw)) - trim
	if start > end {
		return nil, decodeerr.Envelope("payload bounds [%d, %d) are inverted", start, end)
	}
	return raw[start:end], nil
}

func decompress(p *Payload, data []byte, params codec.Params, svc codec.Service) (*Payload, error) {
	log.Debug().Stringer("compression", p.Algorithm).Int("bytes", len(data)).Msg("unwrapping payload")
	out, err := svc.Decompress(data, p.Algorithm, params)
	if err != nil {
		return nil, &decodeerr.Error{Kind: decodeerr.KindDecompression, Err: err}
	}
	if p.Algorithm == codec.LZHAM && len(out) != params.UncompressedSize {
		return nil, decodeerr.Decompression("lzham produced %d bytes, header declares %d", len(out), params.UncompressedSize)
	}
	p.Data = out
	return p, nil
}
