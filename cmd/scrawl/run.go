package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/scrawlml/scrawl/internal/generate"
	"github.com/scrawlml/scrawl/internal/logger"
)

func runCmd() *cli.Command {
	var (
		seedText    string
		length      int64
		temp        float64
		rngSeed     int64
		strict      bool
		interactive bool
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Generate text from a seed",
		Flags: append(append(commonModelFlags(), commonLogFlags()...),
			&cli.StringFlag{
				Name:        "seed",
				Aliases:     []string{"s"},
				Usage:       "seed text (empty uses the default seed)",
				Destination: &seedText,
			},
			&cli.Int64Flag{
				Name:        "length",
				Aliases:     []string{"n"},
				Usage:       "number of characters to generate",
				Value:       500,
				Destination: &length,
			},
			&cli.Float64Flag{
				Name:        "temp",
				Aliases:     []string{"temperature", "t"},
				Usage:       "sampling temperature (must be positive)",
				Value:       0.8,
				Destination: &temp,
			},
			&cli.Int64Flag{
				Name:        "rng-seed",
				Usage:       "sampling RNG seed (default -1 = random)",
				Value:       -1,
				Destination: &rngSeed,
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "fail on seed characters outside the vocabulary",
				Destination: &strict,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "read seed texts interactively",
				Destination: &interactive,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: config: %v\n", err)
			}
			applyConfig(c, cfg, &seedText, &length, &temp, &rngSeed)

			log := buildLogger()
			if temp <= 0 {
				return cli.Exit("error: temperature must be positive", 1)
			}
			sess, err := loadSession(log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if interactive {
				return runInteractive(ctx, sess, log, length, temp, rngSeed, strict)
			}
			return runOnce(ctx, sess, log, seedText, length, temp, rngSeed, strict)
		},
	}
}

func runOnce(ctx context.Context, sess *generate.Session, log logger.Logger,
	seedText string, length int64, temp float64, rngSeed int64, strict bool,
) error {
	req := generate.Request{
		Seed:        seedText,
		Length:      int(length),
		Temperature: temp,
		RNGSeed:     rngSeed,
		Strict:      strict,
	}
	seed := req.Seed
	if seed == "" {
		seed = generate.DefaultSeed
	}
	fmt.Print(seed)
	res, err := sess.Generate(ctx, &req, func(ch string) {
		fmt.Print(ch)
	})
	fmt.Println()
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: generate: %v", err), 1)
	}
	log.Info("generation complete",
		"chars", res.Stats.CharsGenerated,
		"duration", res.Stats.Duration.Round(time.Millisecond),
		"cps", fmt.Sprintf("%.1f", res.Stats.CPS))
	return nil
}

func runInteractive(ctx context.Context, sess *generate.Session, log logger.Logger,
	length int64, temp float64, rngSeed int64, strict bool,
) error {
	fmt.Println("scrawl interactive mode. Enter a seed text; /quit to exit.")
	for {
		line, err := readInteractiveLine("seed> ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return cli.Exit(fmt.Sprintf("error: read seed: %v", err), 1)
		}
		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		}
		if err := runOnce(ctx, sess, log, line, length, temp, rngSeed, strict); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
}
