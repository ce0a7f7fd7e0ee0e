package workflow

import (
	"testing"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerNode(id string, cfg *models.TriggerConfig) *models.FlowNode {
	return &models.FlowNode{ID: id, Type: models.NodeTypeTrigger, Config: cfg}
}

func inboundOf(t models.InboundType, text string) models.InboundMessage {
	return models.InboundMessage{UserID: "u1", Type: t, Text: text, Timestamp: time.Now()}
}

func TestMatchTrigger_FirstMatchInDeclarationOrder(t *testing.T) {
	flow := &models.Flow{
		Nodes: []*models.FlowNode{
			triggerNode("t-keyword", &models.TriggerConfig{Kind: models.TriggerKindKeyword, Keyword: "price"}),
			triggerNode("t-dm", &models.TriggerConfig{Kind: models.TriggerKindDM}),
		},
	}

	// Both triggers match a DM saying "price"; the first declared wins.
	matched := MatchTrigger(flow, models.ChannelWhatsApp, inboundOf(models.InboundTypeMessage, "price"))
	require.NotNil(t, matched)
	assert.Equal(t, "t-keyword", matched.ID)

	matched = MatchTrigger(flow, models.ChannelWhatsApp, inboundOf(models.InboundTypeMessage, "hello"))
	require.NotNil(t, matched)
	assert.Equal(t, "t-dm", matched.ID)
}

func TestMatchTrigger_ChannelFilter(t *testing.T) {
	flow := &models.Flow{
		Nodes: []*models.FlowNode{
			triggerNode("t1", &models.TriggerConfig{Kind: models.TriggerKindDM, Channel: models.ChannelInstagram}),
		},
	}

	assert.Nil(t, MatchTrigger(flow, models.ChannelWhatsApp, inboundOf(models.InboundTypeMessage, "hi")))
	assert.NotNil(t, MatchTrigger(flow, models.ChannelInstagram, inboundOf(models.InboundTypeMessage, "hi")))
}

func TestMatchTrigger_CommentPostFilter(t *testing.T) {
	flow := &models.Flow{
		Nodes: []*models.FlowNode{
			triggerNode("t1", &models.TriggerConfig{Kind: models.TriggerKindComment, PostID: "post-9"}),
		},
	}

	comment := inboundOf(models.InboundTypeComment, "nice")
	comment.PostID = "post-9"
	assert.NotNil(t, MatchTrigger(flow, models.ChannelInstagram, comment))

	comment.PostID = "post-1"
	assert.Nil(t, MatchTrigger(flow, models.ChannelInstagram, comment))

	// Without a post filter any comment matches.
	anyPost := &models.Flow{Nodes: []*models.FlowNode{
		triggerNode("t1", &models.TriggerConfig{Kind: models.TriggerKindComment}),
	}}
	assert.NotNil(t, MatchTrigger(anyPost, models.ChannelInstagram, comment))
}

func TestMatchesKeyword(t *testing.T) {
	cases := []struct {
		name  string
		cfg   models.TriggerConfig
		text  string
		match bool
	}{
		{"exact hit", models.TriggerConfig{Keyword: "price"}, "price", true},
		{"exact case-insensitive", models.TriggerConfig{Keyword: "price"}, "PRICE", true},
		{"exact trims whitespace", models.TriggerConfig{Keyword: "price"}, "  price  ", true},
		{"exact rejects extra words", models.TriggerConfig{Keyword: "price"}, "the price", false},
		{"contains hit", models.TriggerConfig{Keyword: "price", Match: models.KeywordMatchContains}, "what is the PRICE?", true},
		{"contains miss", models.TriggerConfig{Keyword: "price", Match: models.KeywordMatchContains}, "hello", false},
		{"empty keyword never matches", models.TriggerConfig{}, "anything", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Kind = models.TriggerKindKeyword

			got := matchesTrigger(&tc.cfg, models.ChannelWhatsApp, inboundOf(models.InboundTypeMessage, tc.text))
			assert.Equal(t, tc.match, got)
		})
	}
}

func TestMatchTrigger_EventKinds(t *testing.T) {
	cases := []struct {
		kind    models.TriggerKind
		inbound models.InboundType
		match   bool
	}{
		{models.TriggerKindStoryMention, models.InboundTypeStoryMention, true},
		{models.TriggerKindStoryMention, models.InboundTypeMessage, false},
		{models.TriggerKindNewFollower, models.InboundTypeFollow, true},
		{models.TriggerKindNewFollower, models.InboundTypeComment, false},
		{models.TriggerKindDM, models.InboundTypePostback, false},
	}

	for _, tc := range cases {
		cfg := &models.TriggerConfig{Kind: tc.kind}
		got := matchesTrigger(cfg, models.ChannelInstagram, inboundOf(tc.inbound, "x"))
		assert.Equal(t, tc.match, got, "%s vs %s", tc.kind, tc.inbound)
	}
}
