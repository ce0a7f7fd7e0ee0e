package channels

import (
	"context"
	"log/slog"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// Dispatcher adapts outbound messages to channel capabilities and hands them
// to the configured sender. It is the only caller of the send capability.
type Dispatcher struct {
	sender protocol.Sender
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher around a channel sender.
func NewDispatcher(sender protocol.Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger.With("module", "channel_dispatcher"),
	}
}

// SendMessage adapts and delivers one message. Delivery failures come back
// in the result, not as an error: send failures must never abort a flow run.
func (d *Dispatcher) SendMessage(ctx context.Context, channel models.ChannelType, channelID, userID string, message models.NormalizedMessage) models.SendResult {
	payload := AdaptMessage(channel, message)

	result, err := d.sender.Send(ctx, channel, channelID, userID, payload)
	if err != nil {
		d.logger.WarnContext(ctx, "Send failed",
			"channel", channel,
			"user_id", userID,
			"error", err)

		return models.SendResult{Success: false, Error: err.Error()}
	}

	d.logger.DebugContext(ctx, "Message dispatched",
		"channel", channel,
		"user_id", userID,
		"kind", payload.Kind,
		"message_id", result.MessageID)

	return result
}
