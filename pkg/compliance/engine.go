package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
)

// Messaging-window and rate-limit constants, per platform policy.
const (
	messagingWindowHours = 24

	telegramRateMax      = 30
	telegramRateWindowMs = 1000

	twitterDailyMax      = 1000
	twitterDailyWindowMs = 86400000
)

// Engine is the per-channel policy evaluator. Its only mutable state is the
// injected counter store; everything else is supplied per call through the
// PolicyContext.
type Engine struct {
	counters CounterStore
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a compliance engine around a counter store. The store is
// created once per process and injected so it can be swapped for a shared
// Redis store in multi-process deployments.
func NewEngine(counters CounterStore, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		counters: counters,
		now:      time.Now,
		logger:   logger.With("module", "compliance"),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// CheckPolicy decides whether an outbound message of the given type may be
// sent now. The decision is typed, never an error: callers branch on it
// explicitly. Channels without platform restrictions fall through to allowed.
func (e *Engine) CheckPolicy(ctx context.Context, pctx models.PolicyContext, messageType models.MessageType) (models.PolicyDecision, error) {
	switch pctx.Channel {
	case models.ChannelInstagram:
		return e.checkInstagram(pctx, messageType), nil
	case models.ChannelMessenger:
		return e.checkWindow(pctx, models.FallbackHold), nil
	case models.ChannelWhatsApp:
		return e.checkWhatsApp(pctx, messageType), nil
	case models.ChannelTelegram:
		return e.checkRate(ctx, fmt.Sprintf("telegram:%s", pctx.UserID), telegramRateMax, telegramRateWindowMs)
	case models.ChannelTwitter:
		return e.checkRate(ctx, fmt.Sprintf("twitter:%s:daily", pctx.UserID), twitterDailyMax, twitterDailyWindowMs)
	default:
		return models.PolicyDecision{Allowed: true}, nil
	}
}

func (e *Engine) checkInstagram(pctx models.PolicyContext, messageType models.MessageType) models.PolicyDecision {
	if decision := e.checkWindow(pctx, models.FallbackHold); !decision.Allowed {
		return decision
	}

	if messageType == models.MessageTypeStoryReply && !pctx.IsFollower {
		return models.PolicyDecision{
			Allowed:  false,
			Reason:   "story replies require the user to follow the account",
			Fallback: models.FallbackError,
		}
	}

	return models.PolicyDecision{Allowed: true}
}

func (e *Engine) checkWhatsApp(pctx models.PolicyContext, messageType models.MessageType) models.PolicyDecision {
	// Approved templates are exempt from the messaging window.
	if messageType == models.MessageTypeTemplate {
		return models.PolicyDecision{Allowed: true}
	}

	return e.checkWindow(pctx, models.FallbackTemplate)
}

// checkWindow enforces the 24h messaging window. The boundary is exclusive:
// exactly 24.000h since the last inbound message is still allowed.
func (e *Engine) checkWindow(pctx models.PolicyContext, fallback models.FallbackType) models.PolicyDecision {
	if pctx.LastInboundAt == nil {
		return models.PolicyDecision{
			Allowed:  false,
			Reason:   "no inbound message from user yet",
			Fallback: fallback,
		}
	}

	if e.hoursSince(*pctx.LastInboundAt) > messagingWindowHours {
		return models.PolicyDecision{
			Allowed:  false,
			Reason:   "24h messaging window has closed",
			Fallback: fallback,
		}
	}

	return models.PolicyDecision{Allowed: true}
}

func (e *Engine) checkRate(ctx context.Context, key string, maxCount int, windowMs int64) (models.PolicyDecision, error) {
	decision, err := e.counters.Hit(ctx, key, maxCount, windowMs)
	if err != nil {
		return models.PolicyDecision{}, fmt.Errorf("rate limit check failed for %s: %w", key, err)
	}

	if !decision.Allowed {
		e.logger.DebugContext(ctx, "Rate limit exceeded",
			"key", key,
			"count", decision.Count,
			"reset_in", decision.ResetIn)

		return models.PolicyDecision{
			Allowed:  false,
			Reason:   fmt.Sprintf("rate limit exceeded, resets in %s", decision.ResetIn),
			Fallback: models.FallbackHold,
		}, nil
	}

	return models.PolicyDecision{Allowed: true}, nil
}

// GetPolicyStatus wraps CheckPolicy for the free-form message type and adds
// a human-readable suggestion plus, for hold fallbacks inside a known
// window, the whole minutes until the window reopens.
func (e *Engine) GetPolicyStatus(ctx context.Context, pctx models.PolicyContext) (models.PolicyStatus, error) {
	decision, err := e.CheckPolicy(ctx, pctx, models.MessageTypeMessage)
	if err != nil {
		return models.PolicyStatus{}, err
	}

	status := models.PolicyStatus{Decision: decision}

	switch {
	case decision.Allowed:
		status.SuggestedAction = "ok to send"
	case decision.Fallback == models.FallbackTemplate:
		status.SuggestedAction = "send a pre-approved template instead"
	case decision.Fallback == models.FallbackHold && pctx.LastInboundAt != nil:
		hours := e.hoursSince(*pctx.LastInboundAt)
		if hours >= messagingWindowHours {
			status.SuggestedAction = "wait for user to message first"
		} else {
			remaining := int(math.Ceil((messagingWindowHours - hours) * 60))
			status.TimeRemainingMin = &remaining
			status.SuggestedAction = fmt.Sprintf("hold and retry in %d minutes", remaining)
		}
	case decision.Fallback == models.FallbackHold:
		status.SuggestedAction = "wait for user to message first"
	default:
		status.SuggestedAction = "sending is not possible for this message"
	}

	return status, nil
}

func (e *Engine) hoursSince(t time.Time) float64 {
	return e.now().Sub(t).Hours()
}
