package protocol

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// NodeOutcome is what a node handler reports back to the executor. Exactly
// one of the routing fields applies: Suspend pauses the run, NextNodeID
// overrides edge resolution (condition branches, jumps), otherwise BranchKey
// selects the outgoing edge.
type NodeOutcome struct {
	// BranchKey selects the outgoing edge by label. Empty means the first
	// edge leaving the node.
	BranchKey string

	// NextNodeID routes directly to a node, bypassing edge labels.
	NextNodeID string

	// Action names what the node did, for the step log.
	Action string

	// Result carries node output recorded on the step.
	Result map[string]any

	// Suspend, when set, turns the run into waiting_input.
	Suspend *models.WaitingFor

	// SoftError records a non-fatal failure on the step. The run continues:
	// the executor routes to an "error"-labeled edge when one exists, else
	// to the default edge.
	SoftError string
}

// NodeHandler executes one node type. Handlers are stateless; all run state
// lives in the ExecutionContext.
type NodeHandler interface {
	// Type returns the node type this handler executes.
	Type() models.NodeType

	// Schema returns the JSON schema for the node's configuration.
	Schema() map[string]any

	// Execute runs the node. A returned error fails the whole run; recoverable
	// problems belong in NodeOutcome.SoftError.
	Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode) (*NodeOutcome, error)
}

// ResumableHandler is implemented by node types that can suspend waiting for
// user input and later continue from persisted state.
type ResumableHandler interface {
	NodeHandler

	// Resume re-enters a suspended node with the user's new input.
	Resume(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, input models.InboundMessage) (*NodeOutcome, error)
}

// TemplateSource supplies the WhatsApp templates available to a workspace.
type TemplateSource interface {
	Templates(ctx context.Context, workspaceID string) ([]models.WhatsAppTemplate, error)
}

// ActionOutcome is what an action handler reports back.
type ActionOutcome struct {
	// JumpTo redirects traversal after the action list finishes.
	JumpTo string

	// Result carries action output for the step log.
	Result map[string]any
}

// ActionHandler executes one action type from HTTP-node and questionnaire
// action lists.
type ActionHandler interface {
	Type() models.ActionType
	Execute(ctx context.Context, ectx *models.ExecutionContext, config models.ActionConfig) (*ActionOutcome, error)
}
