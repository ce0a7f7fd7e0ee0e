// Package testutil provides test data builders shared across packages.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowbotio/flowbot/pkg/models"
)

// CreateTestFlow creates a published flow with a DM trigger wired to one
// message node. Overrides customize it.
func CreateTestFlow(overrides ...func(*models.Flow)) *models.Flow {
	flow := &models.Flow{
		ID:          uuid.New().String(),
		WorkspaceID: "ws-test",
		Name:        "test flow",
		Version:     1,
		Status:      models.FlowStatusPublished,
		FlowGroupID: uuid.New().String(),
		Nodes: []*models.FlowNode{
			CreateTestNode(WithTriggerNode()),
			CreateTestNode(),
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	flow.Nodes[0].ID = "t1"
	flow.Nodes[1].ID = "m1"
	flow.Edges = []*models.FlowEdge{{From: "t1", To: "m1"}}

	for _, override := range overrides {
		override(flow)
	}

	return flow
}

// CreateTestNode creates a message node with default values that can be
// overridden.
func CreateTestNode(overrides ...func(*models.FlowNode)) *models.FlowNode {
	node := &models.FlowNode{
		ID:     uuid.New().String(),
		Type:   models.NodeTypeMessage,
		Name:   "Test Node",
		Config: &models.MessageConfig{Text: "hello {{name}}"},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithTriggerNode configures the node as a DM trigger.
func WithTriggerNode() func(*models.FlowNode) {
	return func(n *models.FlowNode) {
		n.Type = models.NodeTypeTrigger
		n.Config = &models.TriggerConfig{Kind: models.TriggerKindDM}
	}
}

// WithConfig sets the node configuration.
func WithConfig(config models.NodeConfig) func(*models.FlowNode) {
	return func(n *models.FlowNode) {
		n.Type = config.NodeType()
		n.Config = config
	}
}

// CreateTestUser creates a contact whose messaging window is open.
func CreateTestUser(overrides ...func(*models.UserContact)) *models.UserContact {
	lastInbound := time.Now().Add(-time.Hour)

	user := &models.UserContact{
		ID:            "u-test",
		Name:          "Ana",
		LastInboundAt: &lastInbound,
	}

	for _, override := range overrides {
		override(user)
	}

	return user
}

// CreateTestExecution creates an in-flight execution context bound to a
// test user.
func CreateTestExecution(overrides ...func(*models.ExecutionContext)) *models.ExecutionContext {
	user := CreateTestUser()

	ectx := &models.ExecutionContext{
		ExecutionID: "exec-" + uuid.New().String()[:8],
		FlowID:      "f-test",
		WorkspaceID: "ws-test",
		UserID:      user.ID,
		User:        user,
		ChannelType: models.ChannelTelegram,
		Variables:   map[string]any{"name": user.Name},
		StartedAt:   time.Now(),
	}

	for _, override := range overrides {
		override(ectx)
	}

	return ectx
}
