package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowboard/flowboard/pkg/document"
	"github.com/flowboard/flowboard/pkg/graph"
	"github.com/flowboard/flowboard/pkg/log"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/templates"
	"github.com/urfave/cli/v3"
)

var (
	ErrNoInput          = errors.New("no input document given")
	ErrInvalidDocuments = errors.New("invalid workflow documents found")
)

func outputFlags(defaultFormat string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to this file instead of stdout",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (json, yaml)",
			Value:   defaultFormat,
		},
	}
}

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check documents against the schema, graph invariants and node data rules",
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, command *cli.Command) error {
			paths := command.Args().Slice()
			if len(paths) == 0 {
				return ErrNoInput
			}

			logger := log.WithModule("flowboard").With("action", "validate")
			out := command.Root().Writer

			invalid := 0

			for _, path := range paths {
				definition, _, err := load(path)
				if err == nil {
					err = models.ValidateDefinitionData(definition)
				}

				if err != nil {
					invalid++

					logger.DebugContext(ctx, "document rejected", "path", path, "error", err)
					_, _ = fmt.Fprintf(out, "❌ %s: %v\n", path, err)

					continue
				}

				_, _ = fmt.Fprintf(out, "✅ %s (%d nodes, %d edges)\n", path, len(definition.Nodes), len(definition.Edges))
			}

			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d", ErrInvalidDocuments, invalid, len(paths))
			}

			return nil
		},
	}
}

func NewConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Re-encode a document as JSON or YAML",
		ArgsUsage: "FILE",
		Flags:     outputFlags(string(document.FormatYAML)),
		Action: func(_ context.Context, command *cli.Command) error {
			definition, _, err := load(command.Args().First())
			if err != nil {
				return err
			}

			return write(command, definition, command.String("format"))
		},
	}
}

func NewLayoutCommand() *cli.Command {
	return &cli.Command{
		Name:      "layout",
		Usage:     "Auto-arrange the nodes of a document on the two-column grid",
		ArgsUsage: "FILE",
		Flags:     outputFlags(""),
		Action: func(_ context.Context, command *cli.Command) error {
			definition, format, err := load(command.Args().First())
			if err != nil {
				return err
			}

			g, err := graph.FromDefinition(definition)
			if err != nil {
				return err
			}

			g.AutoArrange()

			arranged := g.Snapshot()
			arranged.CreatedAt = definition.CreatedAt
			arranged.UpdatedAt = definition.UpdatedAt

			target := command.String("format")
			if target == "" {
				target = string(format)
			}

			return write(command, arranged, target)
		},
	}
}

func NewNewCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Create a document from a template",
		Flags: append(outputFlags(string(document.FormatJSON)),
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Workflow name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Workflow description",
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "Template to start from (see the templates command)",
				Value:   templates.Blank,
			},
		),
		Action: func(_ context.Context, command *cli.Command) error {
			template, err := templates.Lookup(command.String("template"))
			if err != nil {
				return err
			}

			g := graph.New(command.String("name"), command.String("description"))
			if err := template.Apply(g); err != nil {
				return err
			}

			return write(command, g.Snapshot(), command.String("format"))
		},
	}
}

func NewTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "List the built-in templates",
		Action: func(_ context.Context, command *cli.Command) error {
			out := command.Root().Writer

			for _, template := range templates.All() {
				_, _ = fmt.Fprintf(out, "%-22s %s\n", template.Name, template.Description)
			}

			return nil
		},
	}
}

// load reads, schema-checks and graph-checks one document. The format comes
// from the file extension, falling back to the content.
func load(path string) (*models.WorkflowDefinition, document.Format, error) {
	if path == "" {
		return nil, "", ErrNoInput
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	format, err := document.ParseFormat(filepath.Ext(path))
	if err != nil {
		format = document.Detect(raw)
	}

	definition, err := document.Decode(raw, format)
	if err != nil {
		return nil, "", err
	}

	if _, err := graph.FromDefinition(definition); err != nil {
		return nil, "", err
	}

	return definition, format, nil
}

func write(command *cli.Command, definition *models.WorkflowDefinition, formatName string) error {
	format, err := document.ParseFormat(formatName)
	if err != nil {
		return err
	}

	raw, err := document.Encode(definition, format)
	if err != nil {
		return err
	}

	if path := command.String("output"); path != "" {
		err := os.WriteFile(path, raw, 0o600)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		return nil
	}

	_, err = command.Root().Writer.Write(raw)

	return err
}
