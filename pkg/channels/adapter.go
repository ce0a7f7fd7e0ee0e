package channels

import (
	"fmt"
	"strings"

	"github.com/flowbotio/flowbot/pkg/models"
)

// AdaptMessage shapes a normalized message into the wire payload a channel
// can actually deliver: text is truncated to the channel limit, buttons past
// the cap are dropped, media is dropped when unsupported, and list options
// degrade to the richest interactive element the channel offers.
func AdaptMessage(channel models.ChannelType, message models.NormalizedMessage) models.WirePayload {
	caps := GetChannelCapabilities(channel)

	payload := models.WirePayload{
		Kind:     "text",
		Text:     truncate(message.Text, caps.MaxTextLength),
		Template: message.Template,
	}

	if message.Template != "" {
		payload.Kind = "template"
	}

	if message.MediaURL != "" && caps.SupportsMedia {
		payload.Kind = "media"
		payload.MediaURL = message.MediaURL
		payload.MediaType = message.MediaType
	}

	if len(message.Buttons) > 0 {
		payload = adaptButtons(caps, payload, message.Buttons)
	}

	if len(message.ListOptions) > 0 {
		payload = adaptList(caps, payload, message.ListOptions)
	}

	return payload
}

func adaptButtons(caps Capabilities, payload models.WirePayload, buttons []models.Button) models.WirePayload {
	// A zero button budget makes every interactive shape unusable, so such
	// channels take the text fold even when they support quick replies.
	switch {
	case caps.SupportsButtons && caps.MaxButtons > 0:
		payload.Kind = "buttons"
		payload.Buttons = capButtons(buttons, caps.MaxButtons)
	case caps.SupportsInlineKeyboard && caps.MaxButtons > 0:
		payload.Kind = "inline_keyboard"
		payload.Buttons = capButtons(buttons, caps.MaxButtons)
	case caps.SupportsQuickReplies && caps.MaxButtons > 0:
		payload.Kind = "quick_replies"
		payload.Buttons = capButtons(buttons, caps.MaxButtons)
	default:
		// Text-only channel: fold the choices into the body.
		payload.Text = truncate(appendNumberedChoices(payload.Text, buttonTitles(buttons)), caps.MaxTextLength)
	}

	return payload
}

func adaptList(caps Capabilities, payload models.WirePayload, options []models.ListOption) models.WirePayload {
	switch {
	case caps.SupportsLists:
		payload.Kind = "list"
		payload.ListOptions = options
	case caps.SupportsInlineKeyboard && caps.MaxButtons > 0:
		payload.Kind = "inline_keyboard"
		payload.Buttons = capButtons(optionsAsButtons(options), caps.MaxButtons)
	case caps.SupportsQuickReplies && caps.MaxButtons > 0:
		payload.Kind = "quick_replies"
		payload.Buttons = capButtons(optionsAsButtons(options), caps.MaxButtons)
	default:
		payload.Text = truncate(appendNumberedChoices(payload.Text, optionTitles(options)), caps.MaxTextLength)
	}

	return payload
}

func capButtons(buttons []models.Button, maxButtons int) []models.Button {
	if maxButtons <= 0 {
		return nil
	}

	if len(buttons) > maxButtons {
		return buttons[:maxButtons]
	}

	return buttons
}

func optionsAsButtons(options []models.ListOption) []models.Button {
	buttons := make([]models.Button, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, models.Button{Title: opt.Title, Payload: opt.Payload})
	}

	return buttons
}

func buttonTitles(buttons []models.Button) []string {
	titles := make([]string, 0, len(buttons))
	for _, b := range buttons {
		titles = append(titles, b.Title)
	}

	return titles
}

func optionTitles(options []models.ListOption) []string {
	titles := make([]string, 0, len(options))
	for _, o := range options {
		titles = append(titles, o.Title)
	}

	return titles
}

func appendNumberedChoices(text string, titles []string) string {
	var sb strings.Builder

	sb.WriteString(text)

	for i, title := range titles {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, title))
	}

	return sb.String()
}

func truncate(text string, maxLen int) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	return text[:maxLen]
}
