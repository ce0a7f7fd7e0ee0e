// Package persistence provides the storage abstraction for flows, contacts
// and suspended executions.
package persistence

import (
	"context"
	"errors"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates a flow was not found by the given identifier.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrPublishedFlowNotFound indicates no published flow exists for the
	// given group.
	ErrPublishedFlowNotFound = errors.New("published flow not found")

	// ErrUserNotFound indicates a contact was not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrExecutionNotFound indicates no suspended execution was found.
	ErrExecutionNotFound = errors.New("execution not found")
)

// FlowRepository stores flow definitions and versions.
type FlowRepository interface {
	Flows(ctx context.Context) ([]*models.Flow, error)
	FlowByID(ctx context.Context, id string) (*models.Flow, error)

	// PublishedFlowByGroup returns the currently published version of a flow
	// group, or ErrPublishedFlowNotFound.
	PublishedFlowByGroup(ctx context.Context, groupID string) (*models.Flow, error)

	SaveFlow(ctx context.Context, flow *models.Flow) error
	DeleteFlow(ctx context.Context, id string) error
}

// UserRepository stores channel contacts.
type UserRepository interface {
	UserByID(ctx context.Context, id string) (*models.UserContact, error)
	SaveUser(ctx context.Context, user *models.UserContact) error
}

// ExecutionRepository stores suspended execution contexts keyed by the user
// waiting to answer. Completed executions are deleted, not archived.
type ExecutionRepository interface {
	SuspendedByUser(ctx context.Context, userID string) (*models.ExecutionContext, error)
	SaveSuspended(ctx context.Context, ectx *models.ExecutionContext) error
	DeleteSuspended(ctx context.Context, userID string) error
}

// Persistence aggregates the repositories behind one backend.
type Persistence interface {
	FlowRepository() FlowRepository
	UserRepository() UserRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound) ||
		errors.Is(err, ErrPublishedFlowNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrExecutionNotFound)
}
