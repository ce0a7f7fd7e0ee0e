package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
)

var (
	ErrNotDraft     = errors.New("only draft flows can be modified")
	ErrNotPublished = errors.New("flow is not published")
)

// PublishingService owns the flow lifecycle: drafts are editable, publishing
// freezes an immutable version, and edits to a published flow go through a
// new draft in the same flow group.
type PublishingService struct {
	flows     persistence.FlowRepository
	validator *Validator
}

// NewPublishingService creates the lifecycle service.
func NewPublishingService(flows persistence.FlowRepository, validator *Validator) *PublishingService {
	return &PublishingService{
		flows:     flows,
		validator: validator,
	}
}

// CreateDraft stores a new version-1 draft in a fresh flow group.
func (s *PublishingService) CreateDraft(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	now := time.Now().UTC()

	flow.ID = uuid.New().String()
	flow.FlowGroupID = uuid.New().String()
	flow.Version = 1
	flow.Status = models.FlowStatusDraft
	flow.CreatedAt = now
	flow.UpdatedAt = now
	flow.PublishedAt = nil

	if err := s.flows.SaveFlow(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	return flow, nil
}

// UpdateDraft replaces a draft's nodes and edges. Published and unpublished
// versions are immutable.
func (s *PublishingService) UpdateDraft(ctx context.Context, flowID string, nodes []*models.FlowNode, edges []*models.FlowEdge) (*models.Flow, error) {
	flow, err := s.flows.FlowByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	if flow.Status != models.FlowStatusDraft {
		return nil, ErrNotDraft
	}

	flow.Nodes = nodes
	flow.Edges = edges
	flow.UpdatedAt = time.Now().UTC()

	if err := s.flows.SaveFlow(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	return flow, nil
}

// Publish validates the draft and makes it the group's active version. The
// previously published version, if any, becomes unpublished but is kept for
// suspended executions still running against it.
func (s *PublishingService) Publish(ctx context.Context, flowID string) (*models.Flow, error) {
	flow, err := s.flows.FlowByID(ctx, flowID)
	if err != nil {
		return nil, err
	}

	if flow.Status != models.FlowStatusDraft {
		return nil, ErrNotDraft
	}

	if s.validator != nil {
		if err := s.validator.ValidateFlow(flow); err != nil {
			return nil, fmt.Errorf("flow validation failed: %w", err)
		}
	}

	previous, err := s.flows.PublishedFlowByGroup(ctx, flow.FlowGroupID)
	if err != nil && !errors.Is(err, persistence.ErrPublishedFlowNotFound) {
		return nil, err
	}

	if previous != nil {
		previous.Status = models.FlowStatusUnpublished
		previous.UpdatedAt = time.Now().UTC()

		if err := s.flows.SaveFlow(ctx, previous); err != nil {
			return nil, fmt.Errorf("failed to unpublish previous version: %w", err)
		}
	}

	now := time.Now().UTC()
	flow.Status = models.FlowStatusPublished
	flow.PublishedAt = &now
	flow.UpdatedAt = now

	if err := s.flows.SaveFlow(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to save published flow: %w", err)
	}

	return flow, nil
}

// NewDraftFromPublished copies the published version into a new editable
// draft with a bumped version number.
func (s *PublishingService) NewDraftFromPublished(ctx context.Context, groupID string) (*models.Flow, error) {
	published, err := s.flows.PublishedFlowByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	draft := *published
	draft.ID = uuid.New().String()
	draft.Version = published.Version + 1
	draft.Status = models.FlowStatusDraft
	draft.CreatedAt = now
	draft.UpdatedAt = now
	draft.PublishedAt = nil

	if err := s.flows.SaveFlow(ctx, &draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	return &draft, nil
}

// Unpublish retires the group's published version without replacing it.
func (s *PublishingService) Unpublish(ctx context.Context, groupID string) error {
	published, err := s.flows.PublishedFlowByGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, persistence.ErrPublishedFlowNotFound) {
			return ErrNotPublished
		}

		return err
	}

	published.Status = models.FlowStatusUnpublished
	published.UpdatedAt = time.Now().UTC()

	if err := s.flows.SaveFlow(ctx, published); err != nil {
		return fmt.Errorf("failed to unpublish flow: %w", err)
	}

	return nil
}
