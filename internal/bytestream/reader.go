package bytestream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOverrun is reported when a read needs more bytes than remain.
var ErrOverrun = errors.New("bytestream: read past end of data")

// Reader is a little-endian cursor over a byte slice.
//
// The first overrun is sticky: it is kept in Err, the cursor stops moving and
// every later read returns zero values. Callers read a whole record and check
// Err once.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Err() error  { return r.err }
func (r *Reader) Offset() int { return r.off }
func (r *Reader) Len() int    { return len(r.data) - r.off }

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrOverrun, n, r.off, len(r.data)-r.off)
		return false
	}
	return true
}

func (r *Reader) U8() uint8 {
	if !r.need(1) {
		return 0
	}
	b := r.data[r.off]
	r.off++
	return b
}

func (r *Reader) I8() int8 { return int8(r.U8()) }

func (r *Reader) U16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *Reader) U32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *Reader) I32() int32 { return int32(r.U32()) }

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

// Str reads a u8-length-prefixed string. Length 0xFF encodes the empty string.
func (r *Reader) Str() string {
	n := r.U8()
	if n == 0xFF {
		return ""
	}
	return string(r.Bytes(int(n)))
}
