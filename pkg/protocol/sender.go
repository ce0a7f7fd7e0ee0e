// Package protocol defines the interfaces and contracts between the flow
// engine and its pluggable collaborators.
package protocol

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Sender delivers an adapted wire payload to a channel. One implementation
// exists per platform; delivery plumbing is outside this module.
type Sender interface {
	Send(ctx context.Context, channel models.ChannelType, channelID, target string, payload models.WirePayload) (models.SendResult, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, channel models.ChannelType, channelID, target string, payload models.WirePayload) (models.SendResult, error)

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, channel models.ChannelType, channelID, target string, payload models.WirePayload) (models.SendResult, error) {
	return f(ctx, channel, channelID, target, payload)
}
