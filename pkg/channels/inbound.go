package channels

import (
	"errors"
	"fmt"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Static error variables for inbound parsing.
var (
	ErrUnsupportedChannel = errors.New("unsupported channel")
	ErrMalformedPayload   = errors.New("malformed inbound payload")
)

// NormalizeInbound parses a raw per-channel webhook payload into the
// canonical inbound message shape. The type field distinguishes plain
// messages from postbacks, comments, story mentions and follow events,
// which trigger matching depends on.
func NormalizeInbound(channel models.ChannelType, raw map[string]any) (models.InboundMessage, error) {
	switch channel {
	case models.ChannelMessenger:
		return normalizeMessenger(raw)
	case models.ChannelInstagram:
		return normalizeInstagram(raw)
	case models.ChannelTelegram:
		return normalizeTelegram(raw)
	case models.ChannelWhatsApp:
		return normalizeWhatsApp(raw)
	case models.ChannelTwitter:
		return normalizeTwitter(raw)
	case models.ChannelSMS:
		return normalizeSMS(raw)
	default:
		return models.InboundMessage{}, fmt.Errorf("%w: %s", ErrUnsupportedChannel, channel)
	}
}

func normalizeMessenger(raw map[string]any) (models.InboundMessage, error) {
	sender, _ := raw["sender"].(map[string]any)

	userID, _ := sender["id"].(string)
	if userID == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing sender.id", ErrMalformedPayload)
	}

	msg := models.InboundMessage{
		UserID:    userID,
		Type:      models.InboundTypeMessage,
		Timestamp: parseEpochMs(raw["timestamp"]),
	}

	if postback, ok := raw["postback"].(map[string]any); ok {
		msg.Type = models.InboundTypePostback
		msg.Text, _ = postback["payload"].(string)

		return msg, nil
	}

	if message, ok := raw["message"].(map[string]any); ok {
		msg.Text, _ = message["text"].(string)
		msg.MediaURL = firstAttachmentURL(message)
	}

	return msg, nil
}

func normalizeInstagram(raw map[string]any) (models.InboundMessage, error) {
	from, _ := raw["from"].(map[string]any)

	userID, _ := from["id"].(string)
	if userID == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing from.id", ErrMalformedPayload)
	}

	msg := models.InboundMessage{
		UserID:    userID,
		Type:      models.InboundTypeMessage,
		Timestamp: parseEpochMs(raw["timestamp"]),
	}

	switch field, _ := raw["field"].(string); field {
	case "comments":
		msg.Type = models.InboundTypeComment
		msg.Text, _ = raw["text"].(string)

		if media, ok := raw["media"].(map[string]any); ok {
			msg.PostID, _ = media["id"].(string)
		}
	case "follow":
		msg.Type = models.InboundTypeFollow
	default:
		if mention, ok := raw["story_mention"].(map[string]any); ok {
			msg.Type = models.InboundTypeStoryMention
			msg.MediaURL, _ = mention["url"].(string)
		} else if message, ok := raw["message"].(map[string]any); ok {
			msg.Text, _ = message["text"].(string)
			msg.MediaURL = firstAttachmentURL(message)
		}
	}

	return msg, nil
}

func normalizeTelegram(raw map[string]any) (models.InboundMessage, error) {
	message, _ := raw["message"].(map[string]any)
	if message == nil {
		return models.InboundMessage{}, fmt.Errorf("%w: missing message", ErrMalformedPayload)
	}

	from, _ := message["from"].(map[string]any)

	userID := numericID(from["id"])
	if userID == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing message.from.id", ErrMalformedPayload)
	}

	text, _ := message["text"].(string)

	return models.InboundMessage{
		UserID:    userID,
		Text:      text,
		Type:      models.InboundTypeMessage,
		Timestamp: parseEpochSec(message["date"]),
	}, nil
}

func normalizeWhatsApp(raw map[string]any) (models.InboundMessage, error) {
	// WhatsApp Cloud API nests the message under entry[0].changes[0].value.messages[0].
	entries, _ := raw["entry"].([]any)
	if len(entries) == 0 {
		return models.InboundMessage{}, fmt.Errorf("%w: missing entry", ErrMalformedPayload)
	}

	entry, _ := entries[0].(map[string]any)
	changes, _ := entry["changes"].([]any)

	if len(changes) == 0 {
		return models.InboundMessage{}, fmt.Errorf("%w: missing entry.changes", ErrMalformedPayload)
	}

	change, _ := changes[0].(map[string]any)
	value, _ := change["value"].(map[string]any)
	messages, _ := value["messages"].([]any)

	if len(messages) == 0 {
		return models.InboundMessage{}, fmt.Errorf("%w: missing messages", ErrMalformedPayload)
	}

	message, _ := messages[0].(map[string]any)

	userID, _ := message["from"].(string)
	if userID == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing messages[0].from", ErrMalformedPayload)
	}

	msg := models.InboundMessage{
		UserID:    userID,
		Type:      models.InboundTypeMessage,
		Timestamp: parseEpochSec(message["timestamp"]),
	}

	if text, ok := message["text"].(map[string]any); ok {
		msg.Text, _ = text["body"].(string)
	}

	if image, ok := message["image"].(map[string]any); ok {
		msg.MediaURL, _ = image["link"].(string)
	}

	return msg, nil
}

func normalizeTwitter(raw map[string]any) (models.InboundMessage, error) {
	events, _ := raw["direct_message_events"].([]any)
	if len(events) == 0 {
		if target, ok := raw["follow_events"].([]any); ok && len(target) > 0 {
			event, _ := target[0].(map[string]any)
			source, _ := event["source"].(map[string]any)

			userID, _ := source["id"].(string)
			if userID == "" {
				return models.InboundMessage{}, fmt.Errorf("%w: missing follow source.id", ErrMalformedPayload)
			}

			return models.InboundMessage{
				UserID:    userID,
				Type:      models.InboundTypeFollow,
				Timestamp: parseEpochMs(event["created_timestamp"]),
			}, nil
		}

		return models.InboundMessage{}, fmt.Errorf("%w: missing direct_message_events", ErrMalformedPayload)
	}

	event, _ := events[0].(map[string]any)
	create, _ := event["message_create"].(map[string]any)

	userID, _ := create["sender_id"].(string)
	if userID == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing message_create.sender_id", ErrMalformedPayload)
	}

	data, _ := create["message_data"].(map[string]any)
	text, _ := data["text"].(string)

	return models.InboundMessage{
		UserID:    userID,
		Text:      text,
		Type:      models.InboundTypeMessage,
		Timestamp: parseEpochMs(event["created_timestamp"]),
	}, nil
}

func normalizeSMS(raw map[string]any) (models.InboundMessage, error) {
	from, _ := raw["From"].(string)
	if from == "" {
		return models.InboundMessage{}, fmt.Errorf("%w: missing From", ErrMalformedPayload)
	}

	body, _ := raw["Body"].(string)

	return models.InboundMessage{
		UserID:    from,
		Text:      body,
		Type:      models.InboundTypeMessage,
		Timestamp: time.Now().UTC(),
	}, nil
}

func firstAttachmentURL(message map[string]any) string {
	attachments, _ := message["attachments"].([]any)
	if len(attachments) == 0 {
		return ""
	}

	attachment, _ := attachments[0].(map[string]any)
	payload, _ := attachment["payload"].(map[string]any)
	url, _ := payload["url"].(string)

	return url
}

// numericID stringifies numeric user IDs, which JSON decodes as float64.
func numericID(value any) string {
	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%.0f", v)
	case string:
		return v
	default:
		return ""
	}
}

func parseEpochMs(value any) time.Time {
	if ms, ok := value.(float64); ok && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC()
	}

	return time.Now().UTC()
}

func parseEpochSec(value any) time.Time {
	switch v := value.(type) {
	case float64:
		if v > 0 {
			return time.Unix(int64(v), 0).UTC()
		}
	case string:
		var sec int64

		_, err := fmt.Sscanf(v, "%d", &sec)
		if err == nil && sec > 0 {
			return time.Unix(sec, 0).UTC()
		}
	}

	return time.Now().UTC()
}
