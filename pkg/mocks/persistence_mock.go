// Package mocks provides testify mocks of the storage and messaging collaborators.
package mocks

import (
	"context"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}

func (m *MockPersistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockPersistence) SaveWorkflow(ctx context.Context, definition *models.WorkflowDefinition) error {
	args := m.Called(ctx, definition)

	return args.Error(0)
}

func (m *MockPersistence) DeleteWorkflow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

var _ persistence.Persistence = (*MockPersistence)(nil)
