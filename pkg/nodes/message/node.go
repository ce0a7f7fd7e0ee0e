// Package message implements the outbound message node: policy check,
// template fallback, interpolation, optional AI rewrite and dispatch.
package message

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/flowbotio/flowbot/pkg/channels"
	"github.com/flowbotio/flowbot/pkg/compliance"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/template"
)

// ErrBadConfig marks a node whose config does not match its type. Publish
// validation should make this unreachable.
var ErrBadConfig = errors.New("node config is not a message config")

// maxDelayMs caps the pre-send delay so a flow cannot park a worker.
const maxDelayMs = 60000

// Handler executes message nodes.
type Handler struct {
	dispatcher *channels.Dispatcher
	policy     *compliance.Engine
	templates  protocol.TemplateSource
	ai         protocol.TextTransformer
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewHandler creates a message node handler. Pass nil for templates when no
// WhatsApp template source is configured; the template fallback then reports
// a soft error instead of substituting.
func NewHandler(dispatcher *channels.Dispatcher, policy *compliance.Engine, templates protocol.TemplateSource, ai protocol.TextTransformer, logger *slog.Logger) *Handler {
	if ai == nil {
		ai = protocol.PassthroughTransformer{}
	}

	return &Handler{
		dispatcher: dispatcher,
		policy:     policy,
		templates:  templates,
		ai:         ai,
		logger:     logger.With("module", "message_node"),
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Type implements protocol.NodeHandler.
func (h *Handler) Type() models.NodeType {
	return models.NodeTypeMessage
}

// Execute runs the node. Policy denials and delivery failures are soft
// errors: the run continues on the error path instead of failing.
func (h *Handler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode) (*protocol.NodeOutcome, error) {
	cfg, ok := node.Config.(*models.MessageConfig)
	if !ok {
		return nil, ErrBadConfig
	}

	// Policy comes first: a denied send must not invoke the AI capability
	// or burn the configured delay.
	decision, err := h.policy.CheckPolicy(ctx, ectx.PolicyContext(), models.MessageTypeMessage)
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		return h.handleDenial(ctx, ectx, node, cfg, decision)
	}

	if cfg.DelayMs > 0 {
		delayMs := cfg.DelayMs
		if delayMs > maxDelayMs {
			delayMs = maxDelayMs
		}

		if err := h.sleep(ctx, time.Duration(delayMs)*time.Millisecond); err != nil {
			return nil, err
		}
	}

	text := template.ReplaceVariables(cfg.Text, ectx.Variables)

	if cfg.AI != nil && cfg.AI.Enabled {
		rewritten, err := h.ai.ProcessMessage(ctx, text, cfg.AI, ectx)
		if err != nil {
			h.logger.WarnContext(ctx, "AI rewrite failed, sending original text",
				"execution_id", ectx.ExecutionID,
				"node_id", node.ID,
				"error", err)
		} else {
			rewritten = template.ReplaceVariables(rewritten, ectx.Variables)
			text = rewritten
		}
	}

	if content := compliance.CheckContentPolicy(text, ectx.ChannelType); !content.Allowed {
		return &protocol.NodeOutcome{
			Action:    "send_message",
			Result:    map[string]any{"sent": false, "violations": content.Violations},
			SoftError: "content policy violation",
		}, nil
	}

	message := models.NormalizedMessage{
		Text:      text,
		Buttons:   cfg.Buttons,
		MediaURL:  cfg.MediaURL,
		MediaType: cfg.MediaType,
	}

	result := h.dispatcher.SendMessage(ctx, ectx.ChannelType, ectx.ChannelID, ectx.UserID, message)
	if !result.Success {
		return &protocol.NodeOutcome{
			Action:    "send_message",
			Result:    map[string]any{"sent": false},
			SoftError: result.Error,
		}, nil
	}

	return &protocol.NodeOutcome{
		Action: "send_message",
		Result: map[string]any{"sent": true, "message_id": result.MessageID},
	}, nil
}

// handleDenial applies the fallback a policy denial prescribes. Only the
// template fallback can still deliver something.
func (h *Handler) handleDenial(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, cfg *models.MessageConfig, decision models.PolicyDecision) (*protocol.NodeOutcome, error) {
	if decision.Fallback == models.FallbackTemplate && h.templates != nil {
		return h.sendTemplate(ctx, ectx, node, cfg, decision)
	}

	h.logger.InfoContext(ctx, "Send blocked by policy",
		"execution_id", ectx.ExecutionID,
		"node_id", node.ID,
		"channel", ectx.ChannelType,
		"reason", decision.Reason,
		"fallback", decision.Fallback)

	return &protocol.NodeOutcome{
		Action: "send_message",
		Result: map[string]any{
			"sent":     false,
			"reason":   decision.Reason,
			"fallback": string(decision.Fallback),
		},
		SoftError: decision.Reason,
	}, nil
}

func (h *Handler) sendTemplate(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, cfg *models.MessageConfig, decision models.PolicyDecision) (*protocol.NodeOutcome, error) {
	available, err := h.templates.Templates(ctx, ectx.WorkspaceID)
	if err != nil {
		h.logger.WarnContext(ctx, "Template catalog unavailable",
			"execution_id", ectx.ExecutionID,
			"node_id", node.ID,
			"error", err)

		return &protocol.NodeOutcome{
			Action:    "send_message",
			Result:    map[string]any{"sent": false, "reason": decision.Reason},
			SoftError: "template catalog unavailable",
		}, nil
	}

	tpl := compliance.SelectWhatsAppTemplate(ectx.PolicyContext(), cfg.Intent, available)
	if tpl == nil {
		return &protocol.NodeOutcome{
			Action:    "send_message",
			Result:    map[string]any{"sent": false, "reason": decision.Reason},
			SoftError: "no approved template available",
		}, nil
	}

	if errs := compliance.ValidateWhatsAppTemplate(*tpl, ectx.Variables); len(errs) > 0 {
		return &protocol.NodeOutcome{
			Action:    "send_message",
			Result:    map[string]any{"sent": false, "template": tpl.Name},
			SoftError: errors.Join(errs...).Error(),
		}, nil
	}

	h.logger.InfoContext(ctx, "Substituting approved template for blocked send",
		"execution_id", ectx.ExecutionID,
		"node_id", node.ID,
		"template", tpl.Name)

	message := models.NormalizedMessage{
		Text:     template.ReplaceVariables(tpl.Body, ectx.Variables),
		Template: tpl.Name,
	}

	result := h.dispatcher.SendMessage(ctx, ectx.ChannelType, ectx.ChannelID, ectx.UserID, message)
	if !result.Success {
		return &protocol.NodeOutcome{
			Action:    "send_message",
			Result:    map[string]any{"sent": false, "template": tpl.Name},
			SoftError: result.Error,
		}, nil
	}

	return &protocol.NodeOutcome{
		Action: "send_message",
		Result: map[string]any{"sent": true, "template": tpl.Name, "message_id": result.MessageID},
	}, nil
}

// Schema implements protocol.NodeHandler.
func (h *Handler) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Message text. Supports {{variable}} interpolation.",
			},
			"buttons": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":   map[string]any{"type": "string"},
						"payload": map[string]any{"type": "string"},
						"url":     map[string]any{"type": "string"},
					},
					"required": []any{"title"},
				},
			},
			"media_url":  map[string]any{"type": "string"},
			"media_type": map[string]any{"type": "string"},
			"intent":     map[string]any{"type": "string"},
			"delay_ms":   map[string]any{"type": "integer", "minimum": 0},
			"ai": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"enabled":      map[string]any{"type": "boolean"},
					"tone":         map[string]any{"type": "string"},
					"instructions": map[string]any{"type": "string"},
				},
			},
		},
		"required": []any{"text"},
	}
}
