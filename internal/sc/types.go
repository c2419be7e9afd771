package sc

import (
	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/texture"
)

// Asset is the decoded content of one SC file and its texture files.
// It owns every entity; cross references are indices or ids.
type Asset struct {
	Path        string
	Compression codec.Algorithm

	Shapes         []*Shape
	MovieClips     []*MovieClip
	Textures       []*texture.Texture
	TextFieldCount int
	MatrixBanks    []*MatrixBank
	Exports        []Export

	// TexturePath is the highres or lowres texture file named by tag 30.
	TexturePath string
	UseLowres   bool

	index map[uint16]DisplayObject
}

// DisplayObject is a Shape or a MovieClip.
type DisplayObject interface {
	DisplayID() uint16
	displayObject()
}

// Shape is a set of textured polygons.
type Shape struct {
	ID uint16
	// PointCount is the total declared by tag 18 shapes, 0 otherwise.
	PointCount int
	Regions    []Region
}

func (s *Shape) DisplayID() uint16 { return s.ID }
func (*Shape) displayObject()      {}

// Region maps a polygon of the shape onto part of a texture.
type Region struct {
	Tag          int8
	TextureIndex int
	// XY in pixels.
	XY []Point
	// UV as stored; tag 22 regions use 0..65535 across the texture.
	UV [][2]uint16
}

type Point struct{ X, Y float64 }

// MovieClip is an animated timeline. Frame data is kept undecoded.
type MovieClip struct {
	ID         uint16
	ExportName string
	FPS        int
	FrameCount int
	Timeline   []byte
}

func (m *MovieClip) DisplayID() uint16 { return m.ID }
func (*MovieClip) displayObject()      {}

// Matrix is a 2x3 affine transform with translation in pixels.
type Matrix struct {
	A, B, C, D float64
	TX, TY     float64
}

type ColorTransform struct {
	RAdd, GAdd, BAdd uint8
	AMul             uint8
	RMul, GMul, BMul uint8
}

// MatrixBank holds the transforms declared at its creation. Its slices never
// grow past those counts.
type MatrixBank struct {
	Matrices        []Matrix
	ColorTransforms []ColorTransform
}

func newMatrixBank(matrices, colors int) *MatrixBank {
	return &MatrixBank{
		Matrices:        make([]Matrix, matrices),
		ColorTransforms: make([]ColorTransform, colors),
	}
}

// Export names a display object.
type Export struct {
	ID     uint16
	Name   string
	Object DisplayObject
}

// DisplayObject returns the shape or movie clip with the given id. Shapes win
// over movie clips, and earlier entities over later ones.
func (a *Asset) DisplayObject(id uint16) (DisplayObject, bool) {
	if a.index == nil {
		a.buildIndex()
	}
	obj, ok := a.index[id]
	return obj, ok
}

func (a *Asset) buildIndex() {
	a.index = make(map[uint16]DisplayObject, len(a.Shapes)+len(a.MovieClips))
	for _, s := range a.Shapes {
		if _, dup := a.index[s.ID]; !dup {
			a.index[s.ID] = s
		}
	}
	for _, m := range a.MovieClips {
		if _, dup := a.index[m.ID]; !dup {
			a.index[m.ID] = m
		}
	}
}

// Texture returns the texture slot at index i, or nil.
func (a *Asset) Texture(i int) *texture.Texture {
	if i < 0 || i >= len(a.Textures) {
		return nil
	}
	return a.Textures[i]
}
