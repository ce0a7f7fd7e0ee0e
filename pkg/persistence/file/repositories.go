package file

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
)

// FlowRepository stores one JSON file per flow version under root/flows.
type FlowRepository struct {
	mu   sync.Mutex
	root string
}

func (r *FlowRepository) dir() string {
	return filepath.Join(r.root, "flows")
}

func (r *FlowRepository) Flows(ctx context.Context) ([]*models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := listIDs(r.dir())
	if err != nil {
		return nil, err
	}

	flows := make([]*models.Flow, 0, len(ids))

	for _, id := range ids {
		var flow models.Flow

		found, err := readJSON(r.dir(), id, &flow)
		if err != nil {
			return nil, err
		}

		if found {
			flows = append(flows, &flow)
		}
	}

	return flows, nil
}

func (r *FlowRepository) FlowByID(_ context.Context, id string) (*models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var flow models.Flow

	found, err := readJSON(r.dir(), id, &flow)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrFlowNotFound
	}

	return &flow, nil
}

func (r *FlowRepository) PublishedFlowByGroup(ctx context.Context, groupID string) (*models.Flow, error) {
	flows, err := r.Flows(ctx)
	if err != nil {
		return nil, err
	}

	for _, flow := range flows {
		if flow.FlowGroupID == groupID && flow.Status == models.FlowStatusPublished {
			return flow, nil
		}
	}

	return nil, persistence.ErrPublishedFlowNotFound
}

func (r *FlowRepository) SaveFlow(_ context.Context, flow *models.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.dir(), flow.ID, flow)
}

func (r *FlowRepository) DeleteFlow(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return removeJSON(r.dir(), id)
}

// UserRepository stores one JSON file per contact under root/users.
type UserRepository struct {
	mu   sync.Mutex
	root string
}

func (r *UserRepository) dir() string {
	return filepath.Join(r.root, "users")
}

func (r *UserRepository) UserByID(_ context.Context, id string) (*models.UserContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var user models.UserContact

	found, err := readJSON(r.dir(), id, &user)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrUserNotFound
	}

	return &user, nil
}

func (r *UserRepository) SaveUser(_ context.Context, user *models.UserContact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.dir(), user.ID, user)
}

// ExecutionRepository stores suspended execution contexts keyed by user ID
// under root/executions. One suspended run per user: a newer suspension
// overwrites the older one.
type ExecutionRepository struct {
	mu   sync.Mutex
	root string
}

func (r *ExecutionRepository) dir() string {
	return filepath.Join(r.root, "executions")
}

func (r *ExecutionRepository) SuspendedByUser(_ context.Context, userID string) (*models.ExecutionContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ectx models.ExecutionContext

	found, err := readJSON(r.dir(), userID, &ectx)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.ErrExecutionNotFound
	}

	return &ectx, nil
}

func (r *ExecutionRepository) SaveSuspended(_ context.Context, ectx *models.ExecutionContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.dir(), ectx.UserID, ectx)
}

func (r *ExecutionRepository) DeleteSuspended(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return removeJSON(r.dir(), userID)
}
