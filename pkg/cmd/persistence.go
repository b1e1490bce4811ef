// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/persistence/file"
	"github.com/flowboard/flowboard/pkg/persistence/postgresql"
	"github.com/flowboard/flowboard/pkg/persistence/redis"
)

var ErrUnsupportedPersistence = errors.New("unsupported persistence provider")

// NewPersistence opens the backend named by the scheme of databaseURL. A URL
// without a scheme is a directory for file persistence.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(databaseURL)

	logger.InfoContext(ctx, "opening persistence", "provider", provider)

	switch provider {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return p, nil
	case "redis", "rediss":
		p, err := redis.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return p, nil
	case "file":
		root := strings.TrimPrefix(databaseURL, "file://")

		err := os.MkdirAll(root, 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create persistence root %s: %w", root, err)
		}

		return file.NewPersistence(root), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPersistence, provider)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
