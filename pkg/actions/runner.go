// Package actions executes the action lists attached to HTTP nodes and
// questionnaire completions.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

var (
	ErrNoHandler     = errors.New("no handler registered for action type")
	ErrMissingConfig = errors.New("action has no config")
)

// Runner executes an action list in order. A jump action stops the list and
// reports the target node; other action failures are recorded and the list
// continues.
type Runner struct {
	handlers map[models.ActionType]protocol.ActionHandler
	logger   *slog.Logger
}

// NewRunner creates a runner over the given handlers.
func NewRunner(logger *slog.Logger, handlers ...protocol.ActionHandler) *Runner {
	byType := make(map[models.ActionType]protocol.ActionHandler, len(handlers))
	for _, h := range handlers {
		byType[h.Type()] = h
	}

	return &Runner{
		handlers: byType,
		logger:   logger.With("module", "action_runner"),
	}
}

// Run executes the list. The returned jump target is empty unless a jump
// action fired; results holds one entry per executed action.
func (r *Runner) Run(ctx context.Context, ectx *models.ExecutionContext, list []models.Action) (string, []map[string]any, error) {
	results := make([]map[string]any, 0, len(list))

	for _, action := range list {
		handler, ok := r.handlers[action.Type]
		if !ok {
			return "", results, fmt.Errorf("%w: %s", ErrNoHandler, action.Type)
		}

		if action.Config == nil {
			return "", results, fmt.Errorf("%w: %s", ErrMissingConfig, action.Type)
		}

		outcome, err := handler.Execute(ctx, ectx, action.Config)
		if err != nil {
			r.logger.WarnContext(ctx, "Action failed",
				"action_type", action.Type,
				"execution_id", ectx.ExecutionID,
				"error", err)

			results = append(results, map[string]any{
				"action": string(action.Type),
				"error":  err.Error(),
			})

			continue
		}

		result := map[string]any{"action": string(action.Type)}
		for k, v := range outcome.Result {
			result[k] = v
		}

		results = append(results, result)

		if outcome.JumpTo != "" {
			return outcome.JumpTo, results, nil
		}
	}

	return "", results, nil
}
