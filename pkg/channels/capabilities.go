// Package channels normalizes messages between the flow engine and the
// per-platform delivery capabilities.
package channels

import "github.com/flowbotio/flowbot/pkg/models"

// Capabilities describes what a channel can render. One static row per
// channel; AdaptMessage consults it to strip or transmute unsupported
// features.
type Capabilities struct {
	SupportsButtons        bool
	SupportsQuickReplies   bool
	SupportsLists          bool
	SupportsInlineKeyboard bool
	SupportsMedia          bool
	MaxTextLength          int
	MaxButtons             int
}

var capabilityTable = map[models.ChannelType]Capabilities{
	models.ChannelWhatsApp: {
		SupportsButtons:      true,
		SupportsQuickReplies: true,
		SupportsLists:        true,
		SupportsMedia:        true,
		MaxTextLength:        4096,
		MaxButtons:           3,
	},
	models.ChannelMessenger: {
		SupportsButtons:      true,
		SupportsQuickReplies: true,
		SupportsMedia:        true,
		MaxTextLength:        2000,
		MaxButtons:           3,
	},
	models.ChannelInstagram: {
		SupportsButtons:      true,
		SupportsQuickReplies: true,
		SupportsMedia:        true,
		MaxTextLength:        1000,
		MaxButtons:           3,
	},
	models.ChannelTelegram: {
		SupportsInlineKeyboard: true,
		SupportsMedia:          true,
		MaxTextLength:          4096,
		MaxButtons:             8,
	},
	models.ChannelTwitter: {
		SupportsQuickReplies: true,
		SupportsMedia:        true,
		MaxTextLength:        10000,
		MaxButtons:           0,
	},
	models.ChannelSMS: {
		MaxTextLength: 1600,
	},
}

// GetChannelCapabilities returns the capability row for a channel. Unknown
// channels get a text-only profile with a conservative length cap.
func GetChannelCapabilities(channel models.ChannelType) Capabilities {
	if caps, ok := capabilityTable[channel]; ok {
		return caps
	}

	return Capabilities{MaxTextLength: 1000}
}
