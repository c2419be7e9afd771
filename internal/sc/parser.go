package sc

import (
	"bytes"
	"fmt"

	"sc-asset-extractor/internal/bytestream"
	"sc-asset-extractor/internal/decodeerr"
	"sc-asset-extractor/internal/texture"
)

type tagKind uint8

const (
	kindEnd tagKind = iota
	kindTexture
	kindNoPixels
	kindTextureFile
	kindShape
	kindMovieClip
	kindMatrix
	kindColorTransform
	kindMatrixBank
	kindSkip
)

func classify(tag int8) tagKind {
	switch tag {
	case 0:
		return kindEnd
	case 1, 16, 19, 24, 27, 28, 29, 34, texture.TagKTX, texture.TagExternalKTX:
		return kindTexture
	case 26:
		return kindNoPixels
	case 30:
		return kindTextureFile
	case 2, 18:
		return kindShape
	case 3, 10, 12, 14, 35:
		return kindMovieClip
	case 8, 36:
		return kindMatrix
	case 9:
		return kindColorTransform
	case 42:
		return kindMatrixBank
	}
	return kindSkip
}

// parserState is the mutable state of one pass over a payload.
type parserState struct {
	asset       *Asset
	r           *bytestream.Reader
	textureOnly bool

	// hasPixels is cleared by tag 26 for the texture tags that follow it.
	hasPixels bool
	sawPixels bool
	// sibling is set by tag 30.
	sibling bool

	textures, shapes, clips int
	bank                    *MatrixBank
	matrices, colors        int

	jobs []texture.Job
	tags map[int8]int
}

func newParser(a *Asset, payload []byte, textureOnly bool) *parserState {
	st := &parserState{
		asset:       a,
		r:           bytestream.NewReader(payload),
		textureOnly: textureOnly,
		hasPixels:   true,
		tags:        make(map[int8]int),
	}
	if n := len(a.MatrixBanks); n > 0 {
		st.bank = a.MatrixBanks[n-1]
	}
	return st
}

// header holds the counts the tag stream is checked against.
type header struct {
	shapes, clips, textures int
	exportIDs               []uint16
}

// readHeader reads the counts and export table that precede the tag stream
// of a regular asset, and allocates every slot.
func (st *parserState) readHeader() (header, error) {
	r, a := st.r, st.asset
	var h header
	h.shapes = int(r.U16())
	h.clips = int(r.U16())
	h.textures = int(r.U16())
	a.TextFieldCount = int(r.U16())
	matrices := int(r.U16())
	colors := int(r.U16())
	r.Skip(5) // u32 + u8, unused

	exports := int(r.U16())
	h.exportIDs = make([]uint16, exports)
	for i := range h.exportIDs {
		h.exportIDs[i] = r.U16()
	}
	a.Exports = make([]Export, exports)
	for i := range a.Exports {
		a.Exports[i] = Export{ID: h.exportIDs[i], Name: r.Str()}
	}
	if err := r.Err(); err != nil {
		return h, decodeerr.TagStream("header: %w", err)
	}

	st.bank = newMatrixBank(matrices, colors)
	a.MatrixBanks = append(a.MatrixBanks, st.bank)
	a.Shapes = make([]*Shape, h.shapes)
	for i := range a.Shapes {
		a.Shapes[i] = &Shape{}
	}
	a.MovieClips = make([]*MovieClip, h.clips)
	for i := range a.MovieClips {
		a.MovieClips[i] = &MovieClip{}
	}
	a.Textures = make([]*texture.Texture, h.textures)
	for i := range a.Textures {
		a.Textures[i] = &texture.Texture{Index: i}
	}
	return h, nil
}

// run walks the tag stream up to the end tag.
func (st *parserState) run() error {
	r := st.r
	for {
		off := r.Offset()
		tag := r.I8()
		length := r.U32()
		if err := r.Err(); err != nil {
			return decodeerr.TagStream("tag header at offset %d: %w", off, err)
		}
		st.tags[tag]++

		kind := classify(tag)
		if kind == kindEnd {
			return nil
		}
		if uint64(length) > uint64(r.Len()) {
			return decodeerr.TagStream("tag %d at offset %d declares %d bytes, %d remain", tag, off, length, r.Len())
		}
		body := bytestream.NewReader(r.Bytes(int(length)))

		if err := st.dispatch(kind, tag, body); err != nil {
			return fmt.Errorf("tag %d at offset %d: %w", tag, off, err)
		}
		if err := body.Err(); err != nil {
			return decodeerr.TagStream("tag %d at offset %d: %w", tag, off, err)
		}
	}
}

func (st *parserState) dispatch(kind tagKind, tag int8, body *bytestream.Reader) error {
	switch kind {
	case kindTexture:
		return st.loadTexture(tag, body)
	case kindNoPixels:
		st.hasPixels = false
	case kindTextureFile:
		st.sibling = true
	case kindShape:
		return st.loadShape(tag, body)
	case kindMovieClip:
		return st.loadMovieClip(body)
	case kindMatrix:
		return st.loadMatrix(tag, body)
	case kindColorTransform:
		return st.loadColorTransform(body)
	case kindMatrixBank:
		st.bank = newMatrixBank(int(body.U16()), int(body.U16()))
		st.asset.MatrixBanks = append(st.asset.MatrixBanks, st.bank)
		st.matrices, st.colors = 0, 0
	case kindSkip:
	default:
		return fmt.Errorf("sc: unhandled tag kind %d", kind)
	}
	return nil
}

func (st *parserState) loadTexture(tag int8, body *bytestream.Reader) error {
	rec, err := texture.ReadRecord(body, tag, st.hasPixels)
	if err != nil {
		return err
	}
	a := st.asset
	if st.textures >= len(a.Textures) {
		if !st.textureOnly {
			return decodeerr.TagStream("more texture tags than the %d declared", len(a.Textures))
		}
		a.Textures = append(a.Textures, &texture.Texture{Index: st.textures})
	}
	tex := a.Textures[st.textures]
	st.textures++

	tex.Assign(&rec)
	tex.Image, tex.Err = nil, nil
	if rec.HasPixels() {
		st.sawPixels = true
		st.jobs = append(st.jobs, texture.Job{Texture: tex, Record: rec})
	}
	return nil
}

func (st *parserState) loadShape(tag int8, r *bytestream.Reader) error {
	if st.shapes >= len(st.asset.Shapes) {
		return decodeerr.TagStream("more shape tags than the %d declared", len(st.asset.Shapes))
	}
	s := st.asset.Shapes[st.shapes]
	st.shapes++

	s.ID = r.U16()
	regions := int(r.U16())
	if tag == 18 {
		s.PointCount = int(r.U16())
	}
	s.Regions = make([]Region, 0, regions)
	for {
		rt := r.I8()
		length := r.U32()
		if r.Err() != nil || rt == 0 {
			return nil
		}
		if uint64(length) > uint64(r.Len()) {
			return decodeerr.TagStream("shape %d: region tag %d declares %d bytes, %d remain", s.ID, rt, length, r.Len())
		}
		sub := bytestream.NewReader(r.Bytes(int(length)))
		switch rt {
		case 4, 17, 22:
			reg := readRegion(rt, sub)
			if err := sub.Err(); err != nil {
				return decodeerr.TagStream("shape %d: region tag %d: %w", s.ID, rt, err)
			}
			s.Regions = append(s.Regions, reg)
		}
	}
}

func readRegion(tag int8, r *bytestream.Reader) Region {
	reg := Region{Tag: tag, TextureIndex: int(r.U8())}
	n := 4
	if tag != 4 {
		n = int(r.U8())
	}
	reg.XY = make([]Point, n)
	for i := range reg.XY {
		reg.XY[i] = Point{X: twips(r.I32()), Y: twips(r.I32())}
	}
	reg.UV = make([][2]uint16, n)
	for i := range reg.UV {
		reg.UV[i] = [2]uint16{r.U16(), r.U16()}
	}
	return reg
}

func (st *parserState) loadMovieClip(r *bytestream.Reader) error {
	if st.clips >= len(st.asset.MovieClips) {
		return decodeerr.TagStream("more movie clip tags than the %d declared", len(st.asset.MovieClips))
	}
	m := st.asset.MovieClips[st.clips]
	st.clips++

	m.ID = r.U16()
	m.FPS = int(r.U8())
	m.FrameCount = int(r.U16())
	m.Timeline = bytes.Clone(r.Bytes(r.Len()))
	return nil
}

func (st *parserState) loadMatrix(tag int8, r *bytestream.Reader) error {
	if st.bank == nil || st.matrices >= len(st.bank.Matrices) {
		return decodeerr.TagStream("matrix %d exceeds bank %d capacity", st.matrices, len(st.asset.MatrixBanks)-1)
	}
	scale := 1024.0
	if tag == 36 {
		scale = 65535.0
	}
	m := &st.bank.Matrices[st.matrices]
	st.matrices++

	m.A = float64(r.I32()) / scale
	m.B = float64(r.I32()) / scale
	m.C = float64(r.I32()) / scale
	m.D = float64(r.I32()) / scale
	m.TX = twips(r.I32())
	m.TY = twips(r.I32())
	return nil
}

func (st *parserState) loadColorTransform(r *bytestream.Reader) error {
	if st.bank == nil || st.colors >= len(st.bank.ColorTransforms) {
		return decodeerr.TagStream("color transform %d exceeds bank %d capacity", st.colors, len(st.asset.MatrixBanks)-1)
	}
	c := &st.bank.ColorTransforms[st.colors]
	st.colors++

	c.RAdd, c.GAdd, c.BAdd = r.U8(), r.U8(), r.U8()
	c.AMul = r.U8()
	c.RMul, c.GMul, c.BMul = r.U8(), r.U8(), r.U8()
	return nil
}

func twips(v int32) float64 { return float64(v) / 20 }
