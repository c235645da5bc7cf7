package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/scrawlml/scrawl/internal/charnn"
	"github.com/scrawlml/scrawl/internal/generate"
	"github.com/scrawlml/scrawl/internal/logger"
	"github.com/scrawlml/scrawl/internal/metadata"
	"github.com/scrawlml/scrawl/internal/model"
)

var (
	modelPath   string
	variantName string
	weightsSeed int64
	logLevel    string
	logFormat   string
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "path to a model directory or metadata.json",
			Destination: &modelPath,
		},
		&cli.StringFlag{
			Name:        "variant",
			Aliases:     []string{"V"},
			Usage:       "model variant (rnn, gru, lstm)",
			Value:       "lstm",
			Destination: &variantName,
		},
		&cli.Int64Flag{
			Name:        "weights-seed",
			Usage:       "RNG seed for the built-in demo backend weights",
			Value:       7,
			Destination: &weightsSeed,
		},
	}
}

func commonLogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, text, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func buildLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	default:
		return logger.Pretty(os.Stderr, level)
	}
}

// loadSession builds a generation session for the selected variant: the
// metadata artifact supplies the vocabulary and dimensions, the built-in
// charnn backend acts as the oracle.
func loadSession(log logger.Logger) (*generate.Session, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("no model given (use --model): %w", generate.ErrNotReady)
	}
	man, err := metadata.Load(modelPath)
	if err != nil {
		return nil, err
	}
	v, err := model.ParseVariant(variantName)
	if err != nil {
		return nil, err
	}
	desc, err := model.NewDescriptor(v, man)
	if err != nil {
		return nil, err
	}
	backend, err := charnn.New(desc, man.VocabSize, weightsSeed)
	if err != nil {
		return nil, err
	}
	log.Debug("model loaded",
		"variant", v.String(),
		"vocab_size", man.VocabSize,
		"hidden_size", desc.HiddenSize,
		"layers", desc.Layers)
	return generate.NewSession(backend, man, v, log)
}
