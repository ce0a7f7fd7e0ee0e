package actions

import (
	"context"
	"log/slog"

	"github.com/flowbotio/flowbot/pkg/channels"
	"github.com/flowbotio/flowbot/pkg/compliance"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/template"
)

// SendMessageHandler delivers a message through the channel dispatcher after
// a policy check. Policy denials are recorded on the result, never raised as
// errors.
type SendMessageHandler struct {
	dispatcher *channels.Dispatcher
	policy     *compliance.Engine
	logger     *slog.Logger
}

func NewSendMessageHandler(dispatcher *channels.Dispatcher, policy *compliance.Engine, logger *slog.Logger) *SendMessageHandler {
	return &SendMessageHandler{
		dispatcher: dispatcher,
		policy:     policy,
		logger:     logger.With("module", "send_message_action"),
	}
}

func (h *SendMessageHandler) Type() models.ActionType {
	return models.ActionTypeSendMessage
}

func (h *SendMessageHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, config models.ActionConfig) (*protocol.ActionOutcome, error) {
	cfg, ok := config.(*models.SendMessageAction)
	if !ok {
		return nil, ErrMissingConfig
	}

	decision, err := h.policy.CheckPolicy(ctx, ectx.PolicyContext(), models.MessageTypeMessage)
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		h.logger.InfoContext(ctx, "Send blocked by policy",
			"execution_id", ectx.ExecutionID,
			"channel", ectx.ChannelType,
			"reason", decision.Reason)

		return &protocol.ActionOutcome{Result: map[string]any{
			"sent":     false,
			"reason":   decision.Reason,
			"fallback": string(decision.Fallback),
		}}, nil
	}

	message := models.NormalizedMessage{
		Text:    template.ReplaceVariables(cfg.Text, ectx.Variables),
		Buttons: cfg.Buttons,
	}

	result := h.dispatcher.SendMessage(ctx, ectx.ChannelType, ectx.ChannelID, ectx.UserID, message)

	outcome := map[string]any{"sent": result.Success}
	if result.MessageID != "" {
		outcome["message_id"] = result.MessageID
	}

	if result.Error != "" {
		outcome["error"] = result.Error
	}

	return &protocol.ActionOutcome{Result: outcome}, nil
}
