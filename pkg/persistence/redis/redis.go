// Package redis provides Redis-backed persistence for workflows and
// execution records. Entities are stored as JSON strings with secondary
// index sets for tenant and workflow scoped listings.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on Redis.
type Persistence struct {
	client     redis.UniversalClient
	workflows  *WorkflowRepository
	executions *ExecutionRepository
}

// NewPersistence creates a Redis persistence layer from an address.
func NewPersistence(addr string) *Persistence {
	client := redis.NewClient(&redis.Options{Addr: addr})

	return NewPersistenceWithClient(client)
}

// NewPersistenceWithClient creates a Redis persistence layer from an
// existing client.
func NewPersistenceWithClient(client redis.UniversalClient) *Persistence {
	return &Persistence{
		client:     client,
		workflows:  &WorkflowRepository{client: client},
		executions: &ExecutionRepository{client: client},
	}
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflows
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executions
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

func workflowKey(id string) string {
	return "workflow:" + id
}

func tenantWorkflowsKey(tenantID string) string {
	return "tenant:" + tenantID + ":workflows"
}

func executionKey(id string) string {
	return "execution:" + id
}

func workflowExecutionsKey(workflowID string) string {
	return "workflow:" + workflowID + ":executions"
}

// WorkflowRepository stores workflow definitions as JSON strings.
type WorkflowRepository struct {
	client redis.UniversalClient
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	data, err := r.client.Get(ctx, workflowKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (r *WorkflowRepository) ListActiveByTenant(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	ids, err := r.client.SMembers(ctx, tenantWorkflowsKey(tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows for tenant %s: %w", tenantID, err)
	}

	sort.Strings(ids)

	var result []*models.Workflow

	for _, id := range ids {
		workflow, err := r.GetByID(ctx, id)
		if err != nil {
			if persistence.IsWorkflowNotFound(err) {
				continue
			}

			return nil, err
		}

		if workflow.Active {
			result = append(result, workflow)
		}
	}

	return result, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, workflowKey(workflow.ID), data, 0)
	pipe.SAdd(ctx, tenantWorkflowsKey(workflow.TenantID), workflow.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

// ExecutionRepository stores execution records as JSON strings.
type ExecutionRepository struct {
	client redis.UniversalClient
}

func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	return r.write(ctx, execution, true)
}

func (r *ExecutionRepository) Update(ctx context.Context, execution *models.Execution) error {
	exists, err := r.client.Exists(ctx, executionKey(execution.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check execution %s: %w", execution.ID, err)
	}

	if exists == 0 {
		return persistence.ErrExecutionNotFound
	}

	return r.write(ctx, execution, false)
}

func (r *ExecutionRepository) write(ctx context.Context, execution *models.Execution, index bool) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", execution.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, executionKey(execution.ID), data, 0)

	if index {
		pipe.LPush(ctx, workflowExecutionsKey(execution.WorkflowID), execution.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	data, err := r.client.Get(ctx, executionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to read execution %s: %w", id, err)
	}

	var execution models.Execution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("failed to parse execution %s: %w", id, err)
	}

	return &execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	ids, err := r.client.LRange(ctx, workflowExecutionsKey(workflowID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list executions for workflow %s: %w", workflowID, err)
	}

	result := make([]*models.Execution, 0, len(ids))

	for _, id := range ids {
		execution, err := r.GetByID(ctx, id)
		if err != nil {
			if persistence.IsExecutionNotFound(err) {
				continue
			}

			return nil, err
		}

		result = append(result, execution)
	}

	return result, nil
}
