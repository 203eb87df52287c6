// Command wfrun validates and invokes workflow documents from the
// command line, wiring the core registry the same way any embedder of
// this module would.
package main

import (
	"context"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/wf-runtime/pkg/log"
	"github.com/dukex/wf-runtime/pkg/registry"
)

func main() {
	cmd := &cli.Command{
		Name:                  "wfrun",
		Usage:                 "Validate and run workflow documents",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewInvokeCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("wfrun failed", "error", err)
		os.Exit(1)
	}
}

func buildRegistry() *registry.Registry {
	return NewExecutorRegistry()
}
