package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/sc"
)

func main() {
	app := &cli.App{
		Name:      "scinspect",
		Usage:     "Print the resource graph of one SC asset",
		ArgsUsage: "<file.sc>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "tex", Usage: "Parse as a texture-only file"},
			&cli.BoolFlag{Name: "regions", Usage: "List every shape region"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
		},
		Action: inspect,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(c *cli.Context) error {
	level := zerolog.InfoLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	path := c.Args().First()
	if path == "" {
		return cli.Exit("missing asset path", 2)
	}

	svc, err := codec.NewDefault()
	if err != nil {
		return err
	}
	defer svc.Close()

	a, err := sc.Load(path, sc.Options{Codec: svc, TextureFile: c.Bool("tex")})
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", a.Path, a.Compression)
	fmt.Printf("Shapes: %d, MovieClips: %d, Textures: %d, TextFields: %d, MatrixBanks: %d\n",
		len(a.Shapes), len(a.MovieClips), len(a.Textures), a.TextFieldCount, len(a.MatrixBanks))
	if a.TexturePath != "" {
		fmt.Printf("Texture file: %s (lowres=%v)\n", a.TexturePath, a.UseLowres)
	}

	for i, t := range a.Textures {
		state := "no pixels"
		switch {
		case !t.Loaded():
			state = "unfilled"
		case t.Err != nil:
			state = "error: " + t.Err.Error()
		case t.Image != nil:
			state = "decoded"
		}
		ext := ""
		if t.External != "" {
			ext = " external=" + t.External
		}
		fmt.Printf("  Texture[%d]: tag=%d format=%v %dx%d%s %s\n", i, t.Tag, t.Format, t.Width, t.Height, ext, state)
	}

	for i, b := range a.MatrixBanks {
		fmt.Printf("  MatrixBank[%d]: matrices=%d, color transforms=%d\n", i, len(b.Matrices), len(b.ColorTransforms))
	}

	exports := append([]sc.Export(nil), a.Exports...)
	sort.Slice(exports, func(i, j int) bool { return exports[i].Name < exports[j].Name })
	for _, e := range exports {
		kind := "shape"
		if _, ok := e.Object.(*sc.MovieClip); ok {
			kind = "movieclip"
		}
		fmt.Printf("  Export %q -> %s %d\n", e.Name, kind, e.ID)
	}

	for _, m := range a.MovieClips {
		fmt.Printf("  MovieClip %d: fps=%d frames=%d timeline=%d bytes export=%q\n",
			m.ID, m.FPS, m.FrameCount, len(m.Timeline), m.ExportName)
	}

	for _, s := range a.Shapes {
		fmt.Printf("  Shape %d: regions=%d\n", s.ID, len(s.Regions))
		if !c.Bool("regions") {
			continue
		}
		for j, r := range s.Regions {
			fmt.Printf("    region[%d] tag=%d texture=%d points=%d", j, r.Tag, r.TextureIndex, len(r.XY))
			if tex := a.Texture(r.TextureIndex); tex == nil || !tex.Loaded() {
				fmt.Print(" (texture missing)")
			}
			if len(r.XY) > 0 {
				fmt.Printf(" first=(%.1f, %.1f) uv=%v", r.XY[0].X, r.XY[0].Y, r.UV[0])
			}
			fmt.Println()
		}
	}
	return nil
}
