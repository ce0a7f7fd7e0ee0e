package models

import "time"

// Button is an interactive element attached to an outbound message.
type Button struct {
	Title   string `json:"title" validate:"required"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
}

// ListOption is one entry of a list message.
type ListOption struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

// NormalizedMessage is the channel-independent description of an outbound
// message, before capability adaptation.
type NormalizedMessage struct {
	Text        string       `json:"text"`
	Buttons     []Button     `json:"buttons,omitempty"`
	ListOptions []ListOption `json:"list_options,omitempty"`
	MediaURL    string       `json:"media_url,omitempty"`
	MediaType   string       `json:"media_type,omitempty"`
	Template    string       `json:"template,omitempty"` // WhatsApp template name, set on template sends
}

// WirePayload is the channel-shaped message handed to a Sender after
// adaptation. Kind describes the shape the channel will receive.
type WirePayload struct {
	Kind        string       `json:"kind"` // text, buttons, quick_replies, inline_keyboard, media, template
	Text        string       `json:"text,omitempty"`
	Buttons     []Button     `json:"buttons,omitempty"`
	ListOptions []ListOption `json:"list_options,omitempty"`
	MediaURL    string       `json:"media_url,omitempty"`
	MediaType   string       `json:"media_type,omitempty"`
	Template    string       `json:"template,omitempty"`
}

// SendResult is what a channel sender reports back.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// InboundMessage is the canonical shape of an inbound webhook event, as
// produced by channel normalization.
type InboundMessage struct {
	UserID    string      `json:"user_id"`
	Text      string      `json:"text,omitempty"`
	MediaURL  string      `json:"media_url,omitempty"`
	Type      InboundType `json:"type"`
	PostID    string      `json:"post_id,omitempty"` // Set for comment events
	Timestamp time.Time   `json:"timestamp"`
}

// AsTriggerData flattens the inbound message into the map merged into a new
// execution's variables.
func (m InboundMessage) AsTriggerData() map[string]any {
	data := map[string]any{
		"user_id": m.UserID,
		"type":    string(m.Type),
	}

	if m.Text != "" {
		data["text"] = m.Text
	}

	if m.MediaURL != "" {
		data["media_url"] = m.MediaURL
	}

	if m.PostID != "" {
		data["post_id"] = m.PostID
	}

	return data
}
