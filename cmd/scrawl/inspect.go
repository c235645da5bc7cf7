package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/scrawlml/scrawl/internal/metadata"
	"github.com/scrawlml/scrawl/internal/model"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print a model metadata summary",
		Flags: commonModelFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if modelPath == "" {
				return cli.Exit("error: no model given (use --model)", 1)
			}
			man, err := metadata.Load(modelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			fmt.Printf("vocab size:  %d\n", man.VocabSize)
			fmt.Printf("hidden size: %d\n", man.HiddenSize)
			fmt.Println("variants:")
			for _, v := range model.Variants() {
				layers := v.DefaultLayers()
				source := "default"
				if n, ok := man.LayerOverride(v.String()); ok {
					layers = n
					source = "metadata"
				}
				fmt.Printf("  %-5s topology=%-6s layers=%d (%s)\n",
					v.String(), v.Topology().String(), layers, source)
			}
			return nil
		},
	}
}
