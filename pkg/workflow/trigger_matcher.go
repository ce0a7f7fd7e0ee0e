package workflow

import (
	"strings"

	"github.com/flowbotio/flowbot/pkg/models"
)

// MatchTrigger returns the first trigger node, in declaration order, whose
// config matches the inbound event. Nil means the flow does not react to this
// event.
func MatchTrigger(flow *models.Flow, channel models.ChannelType, inbound models.InboundMessage) *models.FlowNode {
	for _, node := range flow.TriggerNodes() {
		cfg, ok := node.Config.(*models.TriggerConfig)
		if !ok {
			continue
		}

		if matchesTrigger(cfg, channel, inbound) {
			return node
		}
	}

	return nil
}

func matchesTrigger(cfg *models.TriggerConfig, channel models.ChannelType, inbound models.InboundMessage) bool {
	if cfg.Channel != "" && cfg.Channel != channel {
		return false
	}

	switch cfg.Kind {
	case models.TriggerKindDM:
		return inbound.Type == models.InboundTypeMessage
	case models.TriggerKindComment:
		if inbound.Type != models.InboundTypeComment {
			return false
		}

		return cfg.PostID == "" || cfg.PostID == inbound.PostID
	case models.TriggerKindStoryMention:
		return inbound.Type == models.InboundTypeStoryMention
	case models.TriggerKindNewFollower:
		return inbound.Type == models.InboundTypeFollow
	case models.TriggerKindKeyword:
		return matchesKeyword(cfg, inbound)
	default:
		return false
	}
}

// matchesKeyword compares case-insensitively. Exact match trims surrounding
// whitespace first; contains matches anywhere in the text.
func matchesKeyword(cfg *models.TriggerConfig, inbound models.InboundMessage) bool {
	if inbound.Type != models.InboundTypeMessage && inbound.Type != models.InboundTypeComment {
		return false
	}

	if cfg.Keyword == "" {
		return false
	}

	text := strings.ToLower(inbound.Text)
	keyword := strings.ToLower(cfg.Keyword)

	if cfg.Match == models.KeywordMatchContains {
		return strings.Contains(text, keyword)
	}

	return strings.TrimSpace(text) == keyword
}
