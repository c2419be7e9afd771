package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"sc-asset-extractor/internal/batch"
	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/config"
	"sc-asset-extractor/internal/export"
	"sc-asset-extractor/internal/sc"
	"sc-asset-extractor/internal/texture"
)

func main() {
	app := &cli.App{
		Name:  "scdecode",
		Usage: "Decode SC assets in a directory and export their textures",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "config", Usage: "Path to config.json file"},
			&cli.PathFlag{Name: "input", Aliases: []string{"i"}, Usage: "Directory to scan for assets"},
			&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (default: sc-out beside the input dir)"},
			&cli.StringFlag{Name: "mode", Usage: `"sc" for regular assets, "tex" for *_tex.sc files only`},
			&cli.StringFlag{Name: "format", Usage: "Image format: png, webp, tga or bmp (default: png)"},
			&cli.IntFlag{Name: "max-size", Usage: "Downscale textures whose longer side exceeds this"},
			&cli.IntFlag{Name: "workers", Usage: "Number of worker goroutines (default: NumCPU)"},
			&cli.IntFlag{Name: "test", Usage: "Decode only the first N files"},
			&cli.BoolFlag{Name: "no-manifest", Usage: "Do not write manifest.json"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("scdecode")
	}
}

func setupLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

func run(c *cli.Context) error {
	setupLogging(c.Bool("verbose"))

	// Load config
	var cfg config.Config
	if path := c.Path("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:    c.Path("input"),
		OutputDir:   c.Path("output"),
		Mode:        c.String("mode"),
		ImageFormat: c.String("format"),
		MaxSize:     c.Int("max-size"),
		Workers:     c.Int("workers"),
		NoManifest:  c.Bool("no-manifest"),
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := export.ParseFormat(cfg.ImageFormat)
	if err != nil {
		return err
	}

	files, err := batch.Discover(cfg.InputDir, cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}
	if n := c.Int("test"); n > 0 && n < len(files) {
		files = files[:n]
	}
	if len(files) == 0 {
		fmt.Println("No assets to decode.")
		return nil
	}

	svc, err := codec.NewDefault()
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Printf("SC asset decoder → %s (mode %s)\n", format, cfg.Mode)
	fmt.Printf("Files: %d, Workers: %d\n", len(files), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	batchCfg := batch.Config{
		InputDir:    cfg.InputDir,
		OutputDir:   cfg.OutputDir,
		TextureOnly: cfg.Mode == config.ModeTex,
		Format:      format,
		MaxSize:     cfg.MaxSize,
		Workers:     cfg.Workers,
		Decode: sc.Options{
			Codec:   svc,
			Cache:   texture.NewCache(cfg.CacheEntries),
			Workers: cfg.TextureWorkers,
			Siblings: texture.Siblings{
				HighresSuffix: cfg.HighresSuffix,
				LowresSuffix:  cfg.LowresSuffix,
			},
		},
	}
	results := batch.Run(batchCfg, files)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	// Count results
	var failed []batch.Result
	textures := 0
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
		for _, t := range r.Textures {
			if t.Image != "" {
				textures++
			}
		}
	}
	fmt.Printf("Decoded: %d/%d files, %d textures\n", len(results)-len(failed), len(results), textures)

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s: %s\n", r.File, r.Error)
		}
	}

	if *cfg.Manifest {
		manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return err
		}
		if err := batch.WriteManifest(manifestPath, batchCfg, results); err != nil {
			log.Warn().Err(err).Msg("manifest write failed")
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if len(failed) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
