// Package main provides the flowboard command, offline tooling for workflow
// documents.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/flowboard/flowboard/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	err := NewCommand().Run(context.Background(), os.Args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "flowboard:", err)
		os.Exit(1)
	}
}

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:                  "flowboard",
		Usage:                 "Validate, convert and lay out workflow documents",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewConvertCommand(),
			NewLayoutCommand(),
			NewNewCommand(),
			NewTemplatesCommand(),
		},
	}
}
