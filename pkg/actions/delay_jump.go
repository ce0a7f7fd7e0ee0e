package actions

import (
	"context"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// maxDelayMs caps delay actions so a flow cannot park a worker for long.
const maxDelayMs = 60000

// DelayHandler pauses the action list for a bounded duration.
type DelayHandler struct {
	sleep func(ctx context.Context, d time.Duration) error
}

func NewDelayHandler() *DelayHandler {
	return &DelayHandler{sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *DelayHandler) Type() models.ActionType {
	return models.ActionTypeDelay
}

func (h *DelayHandler) Execute(ctx context.Context, _ *models.ExecutionContext, config models.ActionConfig) (*protocol.ActionOutcome, error) {
	cfg, ok := config.(*models.DelayAction)
	if !ok {
		return nil, ErrMissingConfig
	}

	durationMs := cfg.DurationMs
	if durationMs < 0 {
		durationMs = 0
	}

	if durationMs > maxDelayMs {
		durationMs = maxDelayMs
	}

	if err := h.sleep(ctx, time.Duration(durationMs)*time.Millisecond); err != nil {
		return nil, err
	}

	return &protocol.ActionOutcome{Result: map[string]any{"delayed_ms": durationMs}}, nil
}

// JumpHandler redirects traversal. The runner stops the remaining actions
// when it sees the jump target.
type JumpHandler struct{}

func NewJumpHandler() *JumpHandler { return &JumpHandler{} }

func (h *JumpHandler) Type() models.ActionType {
	return models.ActionTypeJump
}

func (h *JumpHandler) Execute(_ context.Context, _ *models.ExecutionContext, config models.ActionConfig) (*protocol.ActionOutcome, error) {
	cfg, ok := config.(*models.JumpAction)
	if !ok {
		return nil, ErrMissingConfig
	}

	return &protocol.ActionOutcome{
		JumpTo: cfg.NodeID,
		Result: map[string]any{"jump_to": cfg.NodeID},
	}, nil
}
