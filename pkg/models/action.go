package models

import (
	"encoding/json"
	"fmt"
)

// ActionType identifies the behavior of an action inside HTTP-node
// success/error lists and questionnaire completion lists.
type ActionType string

const (
	ActionTypeSendMessage ActionType = "send_message"
	ActionTypeAddTag      ActionType = "add_tag"
	ActionTypeHTTP        ActionType = "http"
	ActionTypeSetField    ActionType = "set_field"
	ActionTypeDelay       ActionType = "delay"
	ActionTypeJump        ActionType = "jump"
)

// ActionConfig is the closed set of per-type action configurations.
type ActionConfig interface {
	ActionType() ActionType
}

// Action is one entry in an action list. Config holds the variant matching
// Type.
type Action struct {
	Type   ActionType   `json:"type" validate:"required"`
	Config ActionConfig `json:"config"`
}

// UnmarshalJSON decodes the config variant selected by the type tag.
func (a *Action) UnmarshalJSON(data []byte) error {
	type alias struct {
		Type   ActionType      `json:"type"`
		Config json.RawMessage `json:"config"`
	}

	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.Type = aux.Type

	if len(aux.Config) == 0 || string(aux.Config) == "null" {
		return nil
	}

	config, err := decodeActionConfig(aux.Type, aux.Config)
	if err != nil {
		return err
	}

	a.Config = config

	return nil
}

func decodeActionConfig(actionType ActionType, data []byte) (ActionConfig, error) {
	switch actionType {
	case ActionTypeSendMessage:
		var c SendMessageAction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid send_message action: %w", err)
		}

		return &c, nil
	case ActionTypeAddTag:
		var c AddTagAction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid add_tag action: %w", err)
		}

		return &c, nil
	case ActionTypeHTTP:
		var c HTTPAction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid http action: %w", err)
		}

		return &c, nil
	case ActionTypeSetField:
		var c SetFieldAction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid set_field action: %w", err)
		}

		return &c, nil
	case ActionTypeDelay:
		var c DelayAction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid delay action: %w", err)
		}

		return &c, nil
	case ActionTypeJump:
		var c JumpAction
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid jump action: %w", err)
		}

		return &c, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", actionType)
	}
}

// SendMessageAction sends an outbound message through the channel adapter.
type SendMessageAction struct {
	Text    string   `json:"text" validate:"required"`
	Buttons []Button `json:"buttons,omitempty"`
}

// ActionType implements ActionConfig.
func (a *SendMessageAction) ActionType() ActionType { return ActionTypeSendMessage }

// AddTagAction tags the contact.
type AddTagAction struct {
	Tag string `json:"tag" validate:"required"`
}

// ActionType implements ActionConfig.
func (a *AddTagAction) ActionType() ActionType { return ActionTypeAddTag }

// HTTPAction fires a nested HTTP call.
type HTTPAction struct {
	URL       string            `json:"url" validate:"required"`
	Method    string            `json:"method,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"body,omitempty"`
	TimeoutMs int               `json:"timeout_ms,omitempty"`
}

// ActionType implements ActionConfig.
func (a *HTTPAction) ActionType() ActionType { return ActionTypeHTTP }

// SetFieldAction writes a value into the execution's variables.
type SetFieldAction struct {
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}

// ActionType implements ActionConfig.
func (a *SetFieldAction) ActionType() ActionType { return ActionTypeSetField }

// DelayAction pauses the action list. Durations are clamped by the action
// runner so a flow cannot stall its worker.
type DelayAction struct {
	DurationMs int `json:"duration_ms" validate:"required,min=1"`
}

// ActionType implements ActionConfig.
func (a *DelayAction) ActionType() ActionType { return ActionTypeDelay }

// JumpAction redirects traversal to another node.
type JumpAction struct {
	NodeID string `json:"node_id" validate:"required"`
}

// ActionType implements ActionConfig.
func (a *JumpAction) ActionType() ActionType { return ActionTypeJump }
