package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"sc-asset-extractor/internal/export"
	"sc-asset-extractor/internal/sc"
	"sc-asset-extractor/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	// TextureOnly parses every file as a *_tex.sc texture file.
	TextureOnly bool
	Format      export.Format
	MaxSize     int
	Workers     int
	// Decode is shared by every file; its Codec and Cache must be safe for
	// concurrent use.
	Decode sc.Options
}

// Result holds the outcome of processing one file.
type Result struct {
	File        string         `json:"file"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	Compression string         `json:"compression,omitempty"`
	Shapes      int            `json:"shapes"`
	MovieClips  int            `json:"movie_clips"`
	Exports     []string       `json:"exports,omitempty"`
	Textures    []TextureEntry `json:"textures,omitempty"`
}

// TextureEntry describes one texture slot and where its image went.
type TextureEntry struct {
	Index  int    `json:"index"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Image  string `json:"image,omitempty"`
	Hash   string `json:"xxhash,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Run processes all files using a worker pool. files are relative to
// cfg.InputDir.
func Run(cfg Config, files []string) []Result {
	total := len(files)
	results := make([]Result, total)
	var processed, failed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info().
						Int64("done", p).
						Int("total", total).
						Int64("failed", failed.Load()).
						Str("rate", fmt.Sprintf("%.1f files/sec", float64(p)/elapsed)).
						Msg("progress")
				}
			}
		}
	}()

	// Worker pool
	workers := max(cfg.Workers, 1)
	fileChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = processFile(cfg, files[idx])
				if !results[idx].Success {
					failed.Add(1)
					log.Warn().Str("file", files[idx]).Str("error", results[idx].Error).Msg("decode failed")
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	hits, misses := cfg.Decode.Cache.Stats()
	log.Info().
		Int("files", total).
		Int64("failed", failed.Load()).
		Int64("cache_hits", hits).
		Int64("cache_misses", misses).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")
	return results
}

func processFile(cfg Config, rel string) Result {
	res := Result{File: rel}
	path := filepath.Join(cfg.InputDir, filepath.FromSlash(rel))

	opts := cfg.Decode
	opts.TextureFile = cfg.TextureOnly
	asset, err := sc.Load(path, opts)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Compression = asset.Compression.String()
	res.Shapes = len(asset.Shapes)
	res.MovieClips = len(asset.MovieClips)
	for _, e := range asset.Exports {
		res.Exports = append(res.Exports, e.Name)
	}

	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	for _, tex := range asset.Textures {
		entry, err := writeTexture(cfg, stem, tex)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Textures = append(res.Textures, entry)
	}
	res.Success = true
	return res
}

// writeTexture saves one decoded texture as <stem>_<index>.<ext> under the
// output dir.
func writeTexture(cfg Config, stem string, tex *texture.Texture) (TextureEntry, error) {
	entry := TextureEntry{
		Index:  tex.Index,
		Width:  tex.Width,
		Height: tex.Height,
		Format: tex.Format.String(),
	}
	if tex.Err != nil {
		entry.Error = tex.Err.Error()
		return entry, nil
	}
	if tex.Image == nil {
		return entry, nil
	}

	entry.Hash = fmt.Sprintf("%016x", xxhash.Sum64(tex.Image.Pix))
	entry.Image = fmt.Sprintf("%s_%d%s", stem, tex.Index, cfg.Format.Ext())

	img := export.Downscale(tex.Image, cfg.MaxSize)
	out := filepath.Join(cfg.OutputDir, filepath.FromSlash(entry.Image))
	if err := export.WriteFile(out, img, cfg.Format); err != nil {
		return entry, err
	}
	return entry, nil
}
