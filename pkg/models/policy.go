package models

import "time"

// FallbackType prescribes the alternative when a policy check denies a send.
type FallbackType string

const (
	FallbackNone     FallbackType = ""
	FallbackTemplate FallbackType = "template" // Substitute an approved template
	FallbackHold     FallbackType = "hold"     // Wait; caller may retry later
	FallbackError    FallbackType = "error"    // Hard denial, no retry path
)

// PolicyContext carries the per-check facts the compliance engine needs. It
// is supplied by the caller from user/channel records and never persisted by
// the engine.
type PolicyContext struct {
	Channel           ChannelType `json:"channel"`
	UserID            string      `json:"user_id"`
	LastInboundAt     *time.Time  `json:"last_inbound_at,omitempty"`
	MessagesSentToday int         `json:"messages_sent_today,omitempty"`
	IsFollower        bool        `json:"is_follower,omitempty"`
}

// PolicyDecision is a typed decision, not an exception: callers must branch
// on it explicitly.
type PolicyDecision struct {
	Allowed  bool         `json:"allowed"`
	Reason   string       `json:"reason,omitempty"`
	Fallback FallbackType `json:"fallback,omitempty"`
}

// PolicyStatus is the user-facing view of a policy decision.
type PolicyStatus struct {
	Decision         PolicyDecision `json:"decision"`
	SuggestedAction  string         `json:"suggested_action"`
	TimeRemainingMin *int           `json:"time_remaining_min,omitempty"`
}

// RateDecision reports the outcome of one rate-limit hit.
type RateDecision struct {
	Allowed bool          `json:"allowed"`
	Count   int64         `json:"count"`
	ResetIn time.Duration `json:"reset_in,omitempty"`
}

// ContentDecision reports content screening violations. Allowed is true only
// when the violation list is empty.
type ContentDecision struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}
