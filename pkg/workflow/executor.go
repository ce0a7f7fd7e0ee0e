// Package workflow runs published flows: trigger matching, node traversal,
// suspension on user input and the flow lifecycle operations.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/otelhelper"
	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/registry"
)

// maxTraversalSteps bounds a single run so a cyclic graph cannot spin
// forever. Publish validation does not forbid cycles; this does.
const maxTraversalSteps = 1000

// Executor runs flows against inbound events.
type Executor struct {
	flows      persistence.FlowRepository
	executions persistence.ExecutionRepository
	registry   *registry.Registry
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewExecutor creates a flow executor. The executions repository may be nil;
// suspensions then live only in the returned result.
func NewExecutor(flows persistence.FlowRepository, executions persistence.ExecutionRepository, reg *registry.Registry, tracer trace.Tracer, logger *slog.Logger) *Executor {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("flowbot")
	}

	return &Executor{
		flows:      flows,
		executions: executions,
		registry:   reg,
		tracer:     tracer,
		logger:     logger.With("module", "flow_executor"),
	}
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}

// Execute looks up the flow and runs it against an inbound event.
func (e *Executor) Execute(ctx context.Context, flowID string, user *models.UserContact, channel models.ChannelType, channelID string, inbound models.InboundMessage) (*models.ExecutionResult, error) {
	flow, err := e.flows.FlowByID(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flow %s: %w", flowID, err)
	}

	return e.ExecuteFlow(ctx, flow, user, channel, channelID, inbound)
}

// ExecuteFlow runs an already loaded flow. When no trigger node matches the
// inbound event the run is skipped with an empty step log.
func (e *Executor) ExecuteFlow(ctx context.Context, flow *models.Flow, user *models.UserContact, channel models.ChannelType, channelID string, inbound models.InboundMessage) (*models.ExecutionResult, error) {
	ectx := newExecutionContext(flow, user, channel, channelID, inbound)

	logger := e.logger.With("flow_id", flow.ID, "execution_id", ectx.ExecutionID)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.execute",
		attribute.String(otelhelper.FlowIDKey, flow.ID),
		attribute.String(otelhelper.ExecutionIDKey, ectx.ExecutionID),
		attribute.String(otelhelper.ChannelKey, string(channel)),
		attribute.String(otelhelper.UserIDKey, ectx.UserID),
	)
	defer span.End()

	trigger := MatchTrigger(flow, channel, inbound)
	if trigger == nil {
		logger.DebugContext(ctx, "No trigger matched, skipping")

		return e.finish(ctx, ectx, models.ExecutionStatusSkipped, ""), nil
	}

	logger.InfoContext(ctx, "Starting flow execution", "trigger_node", trigger.ID)

	start := e.nextNodeID(flow, trigger, "")

	return e.run(ctx, flow, ectx, start)
}

// Resume loads the user's suspended execution and feeds it the new inbound
// message. A "human" handoff never resumes automatically.
func (e *Executor) Resume(ctx context.Context, userID string, input models.InboundMessage) (*models.ExecutionResult, error) {
	if e.executions == nil {
		return nil, persistence.ErrExecutionNotFound
	}

	ectx, err := e.executions.SuspendedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	flow, err := e.flows.FlowByID(ctx, ectx.FlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flow %s: %w", ectx.FlowID, err)
	}

	return e.ResumeFlow(ctx, flow, ectx, input)
}

// ResumeFlow re-enters a suspended execution on its current node.
func (e *Executor) ResumeFlow(ctx context.Context, flow *models.Flow, ectx *models.ExecutionContext, input models.InboundMessage) (*models.ExecutionResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.resume",
		attribute.String(otelhelper.FlowIDKey, flow.ID),
		attribute.String(otelhelper.ExecutionIDKey, ectx.ExecutionID),
	)
	defer span.End()

	if ectx.WaitingFor != nil && ectx.WaitingFor.ExpectedInput == "human" {
		return e.suspendResult(ectx), nil
	}

	node := flow.NodeByID(ectx.CurrentNodeID)
	if node == nil {
		return e.finish(ctx, ectx, models.ExecutionStatusFailed, fmt.Sprintf("suspended node %s not found", ectx.CurrentNodeID)), nil
	}

	handler, err := e.registry.Handler(node.Type)
	if err != nil {
		return e.finish(ctx, ectx, models.ExecutionStatusFailed, err.Error()), nil
	}

	resumable, ok := handler.(protocol.ResumableHandler)
	if !ok {
		return e.finish(ctx, ectx, models.ExecutionStatusFailed, fmt.Sprintf("node type %s cannot resume", node.Type)), nil
	}

	outcome, err := resumable.Resume(ctx, ectx, node, input)
	if err != nil {
		e.recordStep(ectx, node, nil, err.Error())

		return e.finish(ctx, ectx, models.ExecutionStatusFailed, err.Error()), nil
	}

	next, result := e.applyOutcome(ctx, flow, ectx, node, outcome)
	if result != nil {
		return result, nil
	}

	return e.run(ctx, flow, ectx, next)
}

// run is the traversal loop. An empty node ID ends the run as completed.
func (e *Executor) run(ctx context.Context, flow *models.Flow, ectx *models.ExecutionContext, startNodeID string) (*models.ExecutionResult, error) {
	current := startNodeID

	for steps := 0; current != ""; steps++ {
		if steps >= maxTraversalSteps {
			return e.finish(ctx, ectx, models.ExecutionStatusFailed, "traversal step limit exceeded"), nil
		}

		node := flow.NodeByID(current)
		if node == nil {
			return e.finish(ctx, ectx, models.ExecutionStatusFailed, fmt.Sprintf("node %s not found", current)), nil
		}

		// A trigger reached mid-flow is a pass-through.
		if node.Type == models.NodeTypeTrigger {
			current = e.nextNodeID(flow, node, "")

			continue
		}

		handler, err := e.registry.Handler(node.Type)
		if err != nil {
			return e.finish(ctx, ectx, models.ExecutionStatusFailed, err.Error()), nil
		}

		nodeCtx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.node",
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
		)

		ectx.CurrentNodeID = node.ID

		outcome, err := handler.Execute(nodeCtx, ectx, node)
		if err != nil {
			otelhelper.SetError(span, err)
			span.End()
			e.recordStep(ectx, node, nil, err.Error())

			return e.finish(ctx, ectx, models.ExecutionStatusFailed, err.Error()), nil
		}

		span.End()

		next, result := e.applyOutcome(ctx, flow, ectx, node, outcome)
		if result != nil {
			return result, nil
		}

		current = next
	}

	return e.finish(ctx, ectx, models.ExecutionStatusCompleted, ""), nil
}

// applyOutcome records the step and resolves where to go next. A non-nil
// result means the run stopped here (suspension).
func (e *Executor) applyOutcome(ctx context.Context, flow *models.Flow, ectx *models.ExecutionContext, node *models.FlowNode, outcome *protocol.NodeOutcome) (string, *models.ExecutionResult) {
	step := models.ExecutionStep{
		NodeID:    node.ID,
		NodeType:  node.Type,
		Timestamp: time.Now().UTC(),
		Action:    outcome.Action,
		Result:    outcome.Result,
		Error:     outcome.SoftError,
	}
	ectx.Steps = append(ectx.Steps, step)

	if outcome.Suspend != nil {
		ectx.CurrentNodeID = node.ID
		ectx.WaitingFor = outcome.Suspend

		if e.executions != nil {
			if err := e.executions.SaveSuspended(ctx, ectx); err != nil {
				e.logger.ErrorContext(ctx, "Failed to persist suspended execution",
					"execution_id", ectx.ExecutionID,
					"error", err)
			}
		}

		return "", e.suspendResult(ectx)
	}

	ectx.WaitingFor = nil

	if outcome.NextNodeID != "" {
		return outcome.NextNodeID, nil
	}

	if outcome.SoftError != "" {
		return e.errorNextNodeID(flow, node), nil
	}

	return e.nextNodeID(flow, node, outcome.BranchKey), nil
}

// nextNodeID resolves the outgoing edge: the first edge from the node whose
// label matches the branch key, or the first edge at all when the key is
// empty.
func (e *Executor) nextNodeID(flow *models.Flow, node *models.FlowNode, branchKey string) string {
	for _, edge := range flow.Edges {
		if edge.From != node.ID {
			continue
		}

		if branchKey == "" || strings.EqualFold(edge.Label, branchKey) {
			return edge.To
		}
	}

	return ""
}

// errorNextNodeID prefers an "error"-labeled edge, falling back to the
// default edge so soft failures keep the flow moving.
func (e *Executor) errorNextNodeID(flow *models.Flow, node *models.FlowNode) string {
	for _, edge := range flow.Edges {
		if edge.From == node.ID && strings.EqualFold(edge.Label, "error") {
			return edge.To
		}
	}

	return e.nextNodeID(flow, node, "")
}

func (e *Executor) suspendResult(ectx *models.ExecutionContext) *models.ExecutionResult {
	now := time.Now().UTC()

	return &models.ExecutionResult{
		ExecutionID: ectx.ExecutionID,
		FlowID:      ectx.FlowID,
		Status:      models.ExecutionStatusWaitingInput,
		Steps:       ectx.Steps,
		StartedAt:   ectx.StartedAt,
		CompletedAt: &now,
		WaitingFor:  ectx.WaitingFor,
	}
}

// finish closes the run. Every terminal status carries a completion time.
func (e *Executor) finish(ctx context.Context, ectx *models.ExecutionContext, status models.ExecutionStatus, errMessage string) *models.ExecutionResult {
	if ectx.WaitingFor == nil {
		e.clearOwnSuspension(ctx, ectx)
	}

	now := time.Now().UTC()

	return &models.ExecutionResult{
		ExecutionID: ectx.ExecutionID,
		FlowID:      ectx.FlowID,
		Status:      status,
		Steps:       ectx.Steps,
		StartedAt:   ectx.StartedAt,
		CompletedAt: &now,
		Error:       errMessage,
	}
}

// clearOwnSuspension deletes the user's persisted suspension only when it
// belongs to this execution. A different flow finishing for the same user
// must not discard a questionnaire still waiting elsewhere.
func (e *Executor) clearOwnSuspension(ctx context.Context, ectx *models.ExecutionContext) {
	if e.executions == nil {
		return
	}

	saved, err := e.executions.SuspendedByUser(ctx, ectx.UserID)
	if err != nil {
		if !errors.Is(err, persistence.ErrExecutionNotFound) {
			e.logger.WarnContext(ctx, "Failed to check suspended execution",
				"execution_id", ectx.ExecutionID,
				"error", err)
		}

		return
	}

	if saved.ExecutionID != ectx.ExecutionID {
		return
	}

	if err := e.executions.DeleteSuspended(ctx, ectx.UserID); err != nil {
		e.logger.WarnContext(ctx, "Failed to clear suspended execution",
			"execution_id", ectx.ExecutionID,
			"error", err)
	}
}

func (e *Executor) recordStep(ectx *models.ExecutionContext, node *models.FlowNode, result map[string]any, errMessage string) {
	ectx.Steps = append(ectx.Steps, models.ExecutionStep{
		NodeID:    node.ID,
		NodeType:  node.Type,
		Timestamp: time.Now().UTC(),
		Result:    result,
		Error:     errMessage,
	})
}

// newExecutionContext seeds the run state. Variables start with the contact's
// name and custom fields plus the flattened trigger data, so the first
// message node can interpolate without prior set_field actions.
func newExecutionContext(flow *models.Flow, user *models.UserContact, channel models.ChannelType, channelID string, inbound models.InboundMessage) *models.ExecutionContext {
	variables := make(map[string]any)

	if user != nil {
		if user.Name != "" {
			variables["name"] = user.Name
		}

		for k, v := range user.Fields {
			variables[k] = v
		}
	}

	triggerData := inbound.AsTriggerData()
	for k, v := range triggerData {
		variables[k] = v
	}

	userID := inbound.UserID
	if user != nil {
		userID = user.ID
	}

	return &models.ExecutionContext{
		ExecutionID: generateExecutionID(),
		FlowID:      flow.ID,
		WorkspaceID: flow.WorkspaceID,
		UserID:      userID,
		User:        user,
		ChannelID:   channelID,
		ChannelType: channel,
		TriggerData: triggerData,
		Variables:   variables,
		StartedAt:   time.Now().UTC(),
	}
}
