package compliance

import (
	"fmt"
	"strings"

	"github.com/flowbotio/flowbot/pkg/models"
)

var globalDenylist = []string{"gambling", "casino"}

var channelLengthCeilings = map[models.ChannelType]int{
	models.ChannelTelegram:  4096,
	models.ChannelInstagram: 1000,
}

// CheckContentPolicy screens outbound text against the denylist and
// channel-specific length ceilings. The full violation list is returned;
// the message is allowed only when it is empty.
func CheckContentPolicy(text string, channel models.ChannelType) models.ContentDecision {
	var violations []string

	lowered := strings.ToLower(text)

	for _, term := range globalDenylist {
		if strings.Contains(lowered, term) {
			violations = append(violations, fmt.Sprintf("prohibited term %q", term))
		}
	}

	// Crypto promotion is only restricted on WhatsApp.
	if channel == models.ChannelWhatsApp && strings.Contains(lowered, "crypto") {
		violations = append(violations, `prohibited term "crypto"`)
	}

	if ceiling, ok := channelLengthCeilings[channel]; ok && len(text) > ceiling {
		violations = append(violations, fmt.Sprintf("text exceeds %s limit of %d characters", channel, ceiling))
	}

	return models.ContentDecision{
		Allowed:    len(violations) == 0,
		Violations: violations,
	}
}
