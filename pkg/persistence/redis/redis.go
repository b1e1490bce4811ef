// Package redis provides Redis persistence of workflow definitions: one JSON
// document per key plus a set indexing every stored id.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "flowboard:"

// Persistence implements the persistence layer for Redis.
type Persistence struct {
	client       redis.UniversalClient
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
}

// NewPersistence connects to the Redis server at redisURL
// (redis://[user:password@]host:port/db) and verifies the connection.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPersistenceWithClient(client, logger, defaultKeyPrefix), nil
}

// NewPersistenceWithClient wraps an existing client. Every key written is
// prefixed with keyPrefix.
func NewPersistenceWithClient(client redis.UniversalClient, logger *slog.Logger, keyPrefix string) *Persistence {
	return &Persistence{
		client:       client,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(client, logger, keyPrefix),
	}
}

// Close closes the client connection pool.
func (p *Persistence) Close(_ context.Context) error {
	err := p.client.Close()
	if err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	return nil
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return p.workflowRepo.GetAll(ctx)
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return p.workflowRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, definition *models.WorkflowDefinition) error {
	return p.workflowRepo.Save(ctx, definition)
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.workflowRepo.Delete(ctx, id)
}
