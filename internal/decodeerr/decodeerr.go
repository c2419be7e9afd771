package decodeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure. Every kind is fatal for the asset being
// decoded; a batch driver may still continue with the next file.
type Kind uint8

const (
	KindEnvelope Kind = iota + 1
	KindDecompression
	KindTagStream
	KindTextureReference
)

func (k Kind) String() string {
	switch k {
	case KindEnvelope:
		return "envelope"
	case KindDecompression:
		return "decompression"
	case KindTagStream:
		return "tag stream"
	case KindTextureReference:
		return "texture reference"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrEnvelope         = &Error{Kind: KindEnvelope}
	ErrDecompression    = &Error{Kind: KindDecompression}
	ErrTagStream        = &Error{Kind: KindTagStream}
	ErrTextureReference = &Error{Kind: KindTextureReference}
)

// Error is a classified decode failure.
type Error struct {
	Kind Kind
	Path string // asset file, empty when decoding from memory
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the bare sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Err != nil || t.Path != "" {
		return false
	}
	return t.Kind == e.Kind
}

func newf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Err: fmt.Errorf(format, args...)}
}

func Envelope(format string, args ...any) error {
	return newf(KindEnvelope, format, args...)
}

func Decompression(format string, args ...any) error {
	return newf(KindDecompression, format, args...)
}

func TagStream(format string, args ...any) error {
	return newf(KindTagStream, format, args...)
}

func TextureReference(format string, args ...any) error {
	return newf(KindTextureReference, format, args...)
}

// WithPath records path on the first classified error in err's chain that
// has none yet. Unclassified errors are returned unchanged.
func WithPath(err error, path string) error {
	var de *Error
	if errors.As(err, &de) && de.Path == "" && de.Err != nil {
		de.Path = path
	}
	return err
}
