// Package sc decodes SC asset files into shapes, movie clips, matrix banks
// and RGBA textures.
package sc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/decodeerr"
	"sc-asset-extractor/internal/envelope"
	"sc-asset-extractor/internal/texture"
)

// Options configures decoding. Codec is required.
type Options struct {
	Codec codec.Service
	// Cache shares decoded external textures between assets. Optional.
	Cache *texture.Cache
	// Workers bounds concurrent texture decodes; <= 0 means no limit.
	Workers  int
	Siblings texture.Siblings
	// TextureFile parses the input as a texture-only file whatever its name.
	TextureFile bool
}

func (o *Options) siblings() texture.Siblings {
	if o.Siblings == (texture.Siblings{}) {
		return texture.DefaultSiblings
	}
	return o.Siblings
}

// Result describes a parse beyond the graph itself.
type Result struct {
	// HasTexture reports whether any texture tag carried pixel data.
	HasTexture bool
	// Tags counts the tags seen by code, the end tag included.
	Tags map[int8]int
}

// Decode parses a decompressed payload of a regular asset. External texture
// paths resolve against the working directory and no companion file is read.
func Decode(payload []byte, opts Options) (*Asset, Result, error) {
	a := &Asset{}
	st := newParser(a, payload, false)
	h, err := st.readHeader()
	if err != nil {
		return nil, Result{}, err
	}
	if err := st.run(); err != nil {
		return nil, Result{}, err
	}
	res := st.result()
	if err := a.finish(h, st.textures, st.shapes, st.clips); err != nil {
		return nil, res, err
	}
	dec := &texture.Decoder{Codec: opts.Codec, Cache: opts.Cache}
	if err := dec.DecodeAll(st.jobs, opts.Workers); err != nil {
		return nil, res, err
	}
	return a, res, nil
}

// Load reads and decodes the asset at path. A regular asset whose textures
// carry no pixels gets them from its texture file: the highres or lowres
// sibling when tag 30 asks for it, else <base>_tex.sc.
func Load(path string, opts Options) (*Asset, error) {
	a, err := load(path, opts)
	if err != nil {
		return nil, decodeerr.WithPath(err, path)
	}
	return a, nil
}

func load(path string, opts Options) (*Asset, error) {
	a := &Asset{Path: path}
	textureOnly := opts.TextureFile || texture.IsTextureFile(path)

	main, err := a.parseFile(path, textureOnly, opts)
	if err != nil {
		return nil, err
	}
	jobs := main.jobs
	textures := main.textures

	if main.sibling {
		a.TexturePath, a.UseLowres = opts.siblings().Resolve(path)
	}
	if !textureOnly && !main.sawPixels && len(a.Textures) > 0 {
		companion := a.TexturePath
		if companion == "" {
			companion = texture.CompanionPath(path)
		}
		log.Debug().Str("file", path).Str("textures", companion).Msg("loading texture file")
		if _, err := os.Stat(companion); err != nil {
			return nil, decodeerr.TextureReference("texture file: %w", err)
		}
		tex, err := a.parseFile(companion, true, opts)
		if err != nil {
			return nil, decodeerr.WithPath(err, companion)
		}
		jobs = append(jobs, tex.jobs...)
		textures = max(textures, tex.textures)
	}

	if !textureOnly {
		if err := a.finish(*main.header, textures, main.shapes, main.clips); err != nil {
			return nil, err
		}
	}

	dec := &texture.Decoder{Codec: opts.Codec, Dir: filepath.Dir(path), Cache: opts.Cache}
	if err := dec.DecodeAll(jobs, opts.Workers); err != nil {
		return nil, err
	}
	return a, nil
}

type filePass struct {
	*parserState
	header *header
}

// parseFile unwraps one file and parses it into a. Texture-only files have
// no header and fill texture slots from index 0.
func (a *Asset) parseFile(path string, textureOnly bool, opts Options) (*filePass, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sc: read %s: %w", path, err)
	}
	p, err := envelope.Unwrap(envelope.StripMetadata(raw), opts.Codec)
	if err != nil {
		return nil, err
	}
	if a.Compression == codec.None {
		a.Compression = p.Algorithm
	}

	st := newParser(a, p.Data, textureOnly)
	pass := &filePass{parserState: st}
	if !textureOnly {
		h, err := st.readHeader()
		if err != nil {
			return nil, err
		}
		pass.header = &h
	}
	if err := st.run(); err != nil {
		return nil, err
	}
	res := st.result()
	log.Debug().
		Str("file", filepath.Base(path)).
		Stringer("compression", p.Algorithm).
		Int("shapes", st.shapes).
		Int("movie_clips", st.clips).
		Int("textures", st.textures).
		Bool("has_texture", res.HasTexture).
		Interface("tags", res.Tags).
		Msg("parsed")
	return pass, nil
}

func (st *parserState) result() Result {
	return Result{HasTexture: st.sawPixels, Tags: st.tags}
}

// finish checks the declared counts and resolves the export table.
func (a *Asset) finish(h header, textures, shapes, clips int) error {
	switch {
	case shapes != h.shapes:
		return decodeerr.TagStream("loaded %d shapes, header declares %d", shapes, h.shapes)
	case clips != h.clips:
		return decodeerr.TagStream("loaded %d movie clips, header declares %d", clips, h.clips)
	case textures != h.textures:
		return decodeerr.TagStream("loaded %d textures, header declares %d", textures, h.textures)
	}

	a.buildIndex()
	for i := range a.Exports {
		e := &a.Exports[i]
		obj, ok := a.index[e.ID]
		if !ok {
			return decodeerr.TagStream("no display object with id %d for export %q", e.ID, e.Name)
		}
		e.Object = obj
		if m, ok := obj.(*MovieClip); ok {
			m.ExportName = e.Name
		}
	}
	return nil
}
