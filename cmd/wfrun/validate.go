package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/dukex/wf-runtime/pkg/core"
	"github.com/dukex/wf-runtime/pkg/document"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate a workflow document",
		ArgsUsage: "<file>",
		Action: func(_ context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("validate: missing <file> argument")
			}

			wf, err := decodeWorkflowFile(path)
			if err != nil {
				return err
			}

			reg := buildRegistry()
			result := core.Validate(wf, reg)

			if result.OK {
				_, _ = fmt.Fprintln(os.Stdout, "workflow is valid")

				return nil
			}

			_, _ = fmt.Fprintln(os.Stdout, "workflow is invalid:")

			for _, p := range result.Problems {
				_, _ = fmt.Fprintf(os.Stdout, "  [%s] %s\n", p.Code, p.Message)
			}

			return fmt.Errorf("validate: %d problem(s) found", len(result.Problems))
		},
	}
}

func decodeWorkflowFile(path string) (*wfmodel.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	format := document.FormatYAML
	if isJSONPath(path) {
		format = document.FormatJSON
	}

	wf, err := document.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return wf, nil
}
