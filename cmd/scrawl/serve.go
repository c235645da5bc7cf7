package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/scrawlml/scrawl/internal/api"
	"github.com/scrawlml/scrawl/internal/charnn"
	"github.com/scrawlml/scrawl/internal/generate"
	"github.com/scrawlml/scrawl/internal/metadata"
	"github.com/scrawlml/scrawl/internal/model"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		variants    string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the generation REST API",
		Flags: append(append(commonModelFlags(), commonLogFlags()...),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8484",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "variants",
				Usage:       "comma-separated variants to load",
				Value:       "rnn,gru,lstm",
				Destination: &variants,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: config: %v", err), 1)
			}
			applyConfig(cmd, cfg, nil, nil, nil, nil)
			if cfg.ServerAddress != "" && !cmd.IsSet("addr") {
				addr = cfg.ServerAddress
			}
			log := buildLogger()

			if modelPath == "" {
				return cli.Exit("error: no model given (use --model)", 1)
			}
			man, err := metadata.Load(modelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			registry := api.NewRegistry()
			for _, name := range strings.Split(variants, ",") {
				v, err := model.ParseVariant(name)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				desc, err := model.NewDescriptor(v, man)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				backend, err := charnn.New(desc, man.VocabSize, weightsSeed)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				sess, err := generate.NewSession(backend, man, v, log)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				registry.Register(v.String(), sess)
			}

			server := api.NewServer(registry, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "variants", variants)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
