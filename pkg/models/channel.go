// Package models defines the core domain models for multi-channel flow automation.
package models

// ChannelType identifies a messaging platform.
type ChannelType string

const (
	ChannelWhatsApp  ChannelType = "whatsapp"
	ChannelMessenger ChannelType = "messenger"
	ChannelInstagram ChannelType = "instagram"
	ChannelTelegram  ChannelType = "telegram"
	ChannelTwitter   ChannelType = "twitter"
	ChannelSMS       ChannelType = "sms"
)

// MessageType classifies an outbound message for policy evaluation.
type MessageType string

const (
	MessageTypeMessage    MessageType = "message"
	MessageTypeTemplate   MessageType = "template"
	MessageTypeStoryReply MessageType = "story_reply"
)

// InboundType classifies a normalized inbound event. Trigger matching
// dispatches on it.
type InboundType string

const (
	InboundTypeMessage      InboundType = "message"
	InboundTypePostback     InboundType = "postback"
	InboundTypeComment      InboundType = "comment"
	InboundTypeStoryMention InboundType = "story_mention"
	InboundTypeFollow       InboundType = "follow"
)
