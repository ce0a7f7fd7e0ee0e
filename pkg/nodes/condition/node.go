// Package condition implements the branching node: a rule list combined with
// AND or OR, routing directly to the configured true/false target nodes.
package condition

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

var ErrBadConfig = errors.New("node config is not a condition config")

// RuleEvaluator evaluates one rule against the execution state.
type RuleEvaluator func(rule models.ConditionRule, ectx *models.ExecutionContext) bool

// Handler executes condition nodes. Rule evaluation short-circuits: AND
// stops at the first false rule, OR at the first true one.
type Handler struct {
	eval   RuleEvaluator
	now    func() time.Time
	random func() float64
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides the clock used by time and day_of_week rules.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithRandom overrides the source used by random rules.
func WithRandom(random func() float64) Option {
	return func(h *Handler) {
		h.random = random
	}
}

// WithEvaluator replaces the rule evaluator entirely.
func WithEvaluator(eval RuleEvaluator) Option {
	return func(h *Handler) {
		h.eval = eval
	}
}

// NewHandler creates a condition node handler.
func NewHandler(logger *slog.Logger, opts ...Option) *Handler {
	handler := &Handler{
		now:    time.Now,
		random: rand.Float64,
		logger: logger.With("module", "condition_node"),
	}

	for _, opt := range opts {
		opt(handler)
	}

	if handler.eval == nil {
		handler.eval = handler.evaluateRule
	}

	return handler
}

// Type implements protocol.NodeHandler.
func (h *Handler) Type() models.NodeType {
	return models.NodeTypeCondition
}

// Execute evaluates the rules and routes to the matching branch target. An
// empty target ends the run.
func (h *Handler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode) (*protocol.NodeOutcome, error) {
	cfg, ok := node.Config.(*models.ConditionConfig)
	if !ok {
		return nil, ErrBadConfig
	}

	result := h.combine(cfg, ectx)

	next := cfg.Branches.False
	if result {
		next = cfg.Branches.True
	}

	h.logger.DebugContext(ctx, "Condition evaluated",
		"execution_id", ectx.ExecutionID,
		"node_id", node.ID,
		"result", result,
		"next", next)

	return &protocol.NodeOutcome{
		Action:     "condition",
		Result:     map[string]any{"result": result},
		NextNodeID: next,
	}, nil
}

func (h *Handler) combine(cfg *models.ConditionConfig, ectx *models.ExecutionContext) bool {
	if cfg.Operator == models.ConditionOr {
		for _, rule := range cfg.Rules {
			if h.eval(rule, ectx) {
				return true
			}
		}

		return false
	}

	for _, rule := range cfg.Rules {
		if !h.eval(rule, ectx) {
			return false
		}
	}

	return true
}

// Schema implements protocol.NodeHandler.
func (h *Handler) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operator": map[string]any{"enum": []any{"AND", "OR"}},
			"rules": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{
							"enum": []any{"field", "tag", "time", "day_of_week", "source", "random", "follower"},
						},
						"field":       map[string]any{"type": "string"},
						"operator":    map[string]any{"type": "string"},
						"tag":         map[string]any{"type": "string"},
						"from":        map[string]any{"type": "string"},
						"to":          map[string]any{"type": "string"},
						"days":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"probability": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
					},
					"required": []any{"type"},
				},
			},
			"branches": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"true":  map[string]any{"type": "string"},
					"false": map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{"operator", "rules"},
	}
}
