package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

// WorkflowRepository handles workflow-related Redis operations.
type WorkflowRepository struct {
	client    redis.UniversalClient
	logger    *slog.Logger
	keyPrefix string
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(client redis.UniversalClient, logger *slog.Logger, keyPrefix string) *WorkflowRepository {
	return &WorkflowRepository{client: client, logger: logger, keyPrefix: keyPrefix}
}

func (r *WorkflowRepository) workflowKey(id string) string {
	return r.keyPrefix + "workflow:" + id
}

func (r *WorkflowRepository) indexKey() string {
	return r.keyPrefix + "workflows"
}

// GetAll returns every indexed workflow ordered by creation time. Index
// entries whose document has vanished are skipped and pruned.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow ids: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(ids))
	if len(ids) == 0 {
		return workflows, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.workflowKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflows: %w", err)
	}

	var stale []any

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			stale = append(stale, ids[i])

			continue
		}

		var workflow models.WorkflowDefinition

		err := json.Unmarshal([]byte(raw), &workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", ids[i], err)
		}

		workflows = append(workflows, &workflow)
	}

	if len(stale) > 0 {
		err := r.client.SRem(ctx, r.indexKey(), stale...).Err()
		if err != nil {
			r.logger.WarnContext(ctx, "failed to prune workflow index", "error", err)
		}
	}

	slices.SortFunc(workflows, func(a, b *models.WorkflowDefinition) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return workflows, nil
}

// GetByID retrieves a workflow or ErrWorkflowNotFound.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := r.client.Get(ctx, r.workflowKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}

	var workflow models.WorkflowDefinition

	err = json.Unmarshal(data, &workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}

	return &workflow, nil
}

// Save stores the document and indexes its id in one MULTI/EXEC block.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.WorkflowDefinition) error {
	if workflow.ID == "" {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, persistence.ErrInvalidWorkflowID)
	}

	if workflow.CreatedAt.IsZero() {
		existing, err := r.GetByID(ctx, workflow.ID)

		switch {
		case err == nil:
			workflow.CreatedAt = existing.CreatedAt
		case !persistence.IsWorkflowNotFound(err):
			return err
		}
	}

	persistence.Stamp(workflow, time.Now().UTC())

	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.workflowKey(workflow.ID), data, 0)
		pipe.SAdd(ctx, r.indexKey(), workflow.ID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// Delete removes the document and its index entry.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.workflowKey(id))
		pipe.SRem(ctx, r.indexKey(), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}
