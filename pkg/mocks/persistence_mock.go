package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/flowbotio/flowbot/pkg/models"
)

// MockFlowRepository is a mock implementation of persistence.FlowRepository.
type MockFlowRepository struct {
	mock.Mock
}

func (m *MockFlowRepository) Flows(ctx context.Context) ([]*models.Flow, error) {
	args := m.Called(ctx)

	flows, _ := args.Get(0).([]*models.Flow)

	return flows, args.Error(1)
}

func (m *MockFlowRepository) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	args := m.Called(ctx, id)

	flow, _ := args.Get(0).(*models.Flow)

	return flow, args.Error(1)
}

func (m *MockFlowRepository) PublishedFlowByGroup(ctx context.Context, groupID string) (*models.Flow, error) {
	args := m.Called(ctx, groupID)

	flow, _ := args.Get(0).(*models.Flow)

	return flow, args.Error(1)
}

func (m *MockFlowRepository) SaveFlow(ctx context.Context, flow *models.Flow) error {
	args := m.Called(ctx, flow)

	return args.Error(0)
}

func (m *MockFlowRepository) DeleteFlow(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockUserRepository is a mock implementation of persistence.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) UserByID(ctx context.Context, id string) (*models.UserContact, error) {
	args := m.Called(ctx, id)

	user, _ := args.Get(0).(*models.UserContact)

	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user *models.UserContact) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

// MockExecutionRepository is a mock implementation of
// persistence.ExecutionRepository.
type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) SuspendedByUser(ctx context.Context, userID string) (*models.ExecutionContext, error) {
	args := m.Called(ctx, userID)

	ectx, _ := args.Get(0).(*models.ExecutionContext)

	return ectx, args.Error(1)
}

func (m *MockExecutionRepository) SaveSuspended(ctx context.Context, ectx *models.ExecutionContext) error {
	args := m.Called(ctx, ectx)

	return args.Error(0)
}

func (m *MockExecutionRepository) DeleteSuspended(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)

	return args.Error(0)
}
