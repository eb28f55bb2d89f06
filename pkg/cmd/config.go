package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dukex/operion-octagon/pkg/credentials"
	"github.com/dukex/operion-octagon/pkg/credentials/octagonapi"
	"github.com/dukex/operion-octagon/pkg/models"
	"github.com/dukex/operion-octagon/pkg/octagon"
	"github.com/dukex/operion-octagon/pkg/otelhelper"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

// LoadEnvFile loads variables from path into the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}

func EnvFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "env-file",
		Usage:   "Load environment variables from this file when it exists",
		Value:   ".env",
		Sources: cli.EnvVars("ENV_FILE"),
	}
}

func LogLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
}

func DatabaseURLFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "database-url",
		Usage:    "Database connection URL for persistence (file://path or postgres://...)",
		Required: required,
		Sources:  cli.EnvVars("DATABASE_URL"),
	}
}

func EventBusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "Comma separated Kafka brokers",
			Value:   "localhost:9092",
			Sources: cli.EnvVars("KAFKA_BROKERS"),
		},
	}
}

func PluginsPathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "plugins-path",
		Usage:   "Path to the directory containing node plugins",
		Value:   "./plugins",
		Sources: cli.EnvVars("PLUGINS_PATH"),
	}
}

func TracingFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "tracing",
		Usage:   "Export traces over OTLP/HTTP (configured with OTEL_EXPORTER_OTLP_* variables)",
		Sources: cli.EnvVars("TRACING_ENABLED"),
	}
}

func OctagonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "octagon-api-key",
			Usage:   "Octagon API key used for the octagonApi credential",
			Sources: cli.EnvVars("OCTAGON_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "octagon-base-url",
			Usage:   "Octagon API base URL",
			Value:   octagon.DefaultBaseURL,
			Sources: cli.EnvVars("OCTAGON_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "request-format",
			Usage:   "Request body format (responses, legacy)",
			Value:   string(octagon.FormatResponses),
			Sources: cli.EnvVars("OCTAGON_REQUEST_FORMAT"),
		},
		&cli.DurationFlag{
			Name:    "octagon-timeout",
			Usage:   "Timeout for each Octagon API request",
			Value:   octagon.DefaultTimeout,
			Sources: cli.EnvVars("OCTAGON_TIMEOUT"),
		},
	}
}

// NewTracer returns an exporting tracer when --tracing is set.
// nolint:ireturn
func NewTracer(ctx context.Context, command *cli.Command, serviceName string) (trace.Tracer, error) {
	return otelhelper.TracerFor(ctx, serviceName, command.Bool("tracing"))
}

// NewOctagonClient builds the API client from the Octagon flags.
func NewOctagonClient(command *cli.Command, tracer trace.Tracer) (*octagon.Client, error) {
	format, err := octagon.ParseRequestFormat(command.String("request-format"))
	if err != nil {
		return nil, err
	}

	return octagon.NewClient(
		octagon.WithBaseURL(command.String("octagon-base-url")),
		octagon.WithTimeout(command.Duration("octagon-timeout")),
		octagon.WithRequestFormat(format),
		octagon.WithTracer(tracer),
	), nil
}

// NewCredentialStore stores the credentials given on the command line.
func NewCredentialStore(command *cli.Command) *credentials.Store {
	store := credentials.NewStore()

	if apiKey := command.String("octagon-api-key"); apiKey != "" {
		store.Set(octagonapi.Name, models.CredentialData{"apiKey": apiKey})
	}

	return store
}
