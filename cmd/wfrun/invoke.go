package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/wf-runtime/pkg/core"
)

func NewInvokeCommand() *cli.Command {
	return &cli.Command{
		Name:      "invoke",
		Aliases:   []string{"i"},
		Usage:     "Invoke a workflow document with a JSON input file",
		ArgsUsage: "<file> <input.json>",
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().Get(0)
			inputPath := command.Args().Get(1)

			if path == "" || inputPath == "" {
				return fmt.Errorf("invoke: usage: invoke <file> <input.json>")
			}

			wf, err := decodeWorkflowFile(path)
			if err != nil {
				return err
			}

			inputData, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inputPath, err)
			}

			var input map[string]any
			if err := json.Unmarshal(inputData, &input); err != nil {
				return fmt.Errorf("decoding %s: %w", inputPath, err)
			}

			reg := buildRegistry()

			result, err := core.Invoke(ctx, wf, reg, input)
			if err != nil {
				return fmt.Errorf("invoke: %w", err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("invoke: encoding result: %w", err)
			}

			_, _ = fmt.Fprintln(os.Stdout, string(out))

			if len(result.Errors) > 0 {
				return fmt.Errorf("invoke: run completed with %d error(s)", len(result.Errors))
			}

			return nil
		},
	}
}

func isJSONPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}
