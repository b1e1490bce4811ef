package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/flowboard/flowboard/pkg/cmd"
	"github.com/flowboard/flowboard/pkg/log"
	"github.com/flowboard/flowboard/pkg/otelhelper"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	err := command().Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:                  "flowboard-api",
		Usage:                 "Serve the workflow editing API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persistence URL (file path, file://, postgres://, redis://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka, none)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers for the kafka event bus",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing Flowboard API")

	tracer, shutdown, err := otelhelper.NewTracer(ctx, "flowboard-api", command.Bool("otel-enabled"))
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	}()

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger, command.String("kafka-brokers"))
	if err != nil {
		return err
	}

	if eventBus != nil {
		defer func() {
			if err := eventBus.Close(); err != nil {
				logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
			}
		}()
	}

	api := NewAPI(logger, persistence, eventBus, tracer)

	return api.Start(ctx, int(command.Int("port")))
}
