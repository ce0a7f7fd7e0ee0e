package actions

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/template"
)

// AddTagHandler tags the execution's contact. Tagging with no loaded contact
// is a no-op recorded on the result.
type AddTagHandler struct{}

func NewAddTagHandler() *AddTagHandler { return &AddTagHandler{} }

func (h *AddTagHandler) Type() models.ActionType {
	return models.ActionTypeAddTag
}

func (h *AddTagHandler) Execute(_ context.Context, ectx *models.ExecutionContext, config models.ActionConfig) (*protocol.ActionOutcome, error) {
	cfg, ok := config.(*models.AddTagAction)
	if !ok {
		return nil, ErrMissingConfig
	}

	if ectx.User == nil {
		return &protocol.ActionOutcome{Result: map[string]any{"tagged": false}}, nil
	}

	ectx.User.AddTag(cfg.Tag)

	return &protocol.ActionOutcome{Result: map[string]any{"tagged": true, "tag": cfg.Tag}}, nil
}

// SetFieldHandler writes a value into the execution variables. String values
// are interpolated against the current variables first.
type SetFieldHandler struct{}

func NewSetFieldHandler() *SetFieldHandler { return &SetFieldHandler{} }

func (h *SetFieldHandler) Type() models.ActionType {
	return models.ActionTypeSetField
}

func (h *SetFieldHandler) Execute(_ context.Context, ectx *models.ExecutionContext, config models.ActionConfig) (*protocol.ActionOutcome, error) {
	cfg, ok := config.(*models.SetFieldAction)
	if !ok {
		return nil, ErrMissingConfig
	}

	value := cfg.Value
	if text, isString := value.(string); isString {
		value = template.ReplaceVariables(text, ectx.Variables)
	}

	if ectx.Variables == nil {
		ectx.Variables = make(map[string]any)
	}

	ectx.Variables[cfg.Field] = value

	return &protocol.ActionOutcome{Result: map[string]any{"field": cfg.Field, "value": value}}, nil
}
