package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"sc-asset-extractor/internal/codec"
	"sc-asset-extractor/internal/envelope"
)

func main() {
	app := &cli.App{
		Name:      "scunpack",
		Usage:     "Strip the SC envelope from compressed files (.sc, .csv) and write the raw payload",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "suffix", Value: ".out", Usage: "Appended to each input name to form the output name"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Debug logging"},
		},
		Action: unpackAll,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("scunpack")
	}
}

func unpackAll(c *cli.Context) error {
	level := zerolog.InfoLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if c.NArg() == 0 {
		return cli.Exit("no input files", 2)
	}
	svc, err := codec.NewDefault()
	if err != nil {
		return err
	}
	defer svc.Close()

	failed := 0
	for _, in := range c.Args().Slice() {
		if err := unpack(svc, in, in+c.String("suffix")); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("done with %d error(s)", failed), 1)
	}
	return nil
}

func unpack(svc codec.Service, in, out string) error {
	raw, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	p, err := envelope.Unwrap(envelope.StripMetadata(raw), svc)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	if err := os.WriteFile(out, p.Data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("OK  %s -> %s  (%s, %d -> %d bytes)\n", in, out, p.Algorithm, len(raw), len(p.Data))
	return nil
}
