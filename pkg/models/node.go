package models

import (
	"encoding/json"
	"fmt"
)

// NodeType identifies the behavior of a flow node.
type NodeType string

const (
	NodeTypeTrigger       NodeType = "trigger"
	NodeTypeMessage       NodeType = "message"
	NodeTypeQuestionnaire NodeType = "questionnaire"
	NodeTypeCondition     NodeType = "condition"
	NodeTypeHTTP          NodeType = "http"
)

// NodeConfig is the closed set of per-type node configurations. Dispatch is
// always on the variant tag (FlowNode.Type), never on optional fields.
type NodeConfig interface {
	NodeType() NodeType
}

// FlowNode represents one step in a flow. Config holds the variant matching
// Type. RawConfig preserves the original JSON for schema validation at
// publish time; it is empty for nodes built in code.
type FlowNode struct {
	ID        string          `json:"id"   validate:"required"`
	Type      NodeType        `json:"type" validate:"required"`
	Name      string          `json:"name"`
	Config    NodeConfig      `json:"config"`
	PositionX int             `json:"position_x"`
	PositionY int             `json:"position_y"`
	RawConfig json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the config variant selected by the type tag.
func (n *FlowNode) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID        string          `json:"id"`
		Type      NodeType        `json:"type"`
		Name      string          `json:"name"`
		Config    json.RawMessage `json:"config"`
		PositionX int             `json:"position_x"`
		PositionY int             `json:"position_y"`
	}

	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	n.ID = aux.ID
	n.Type = aux.Type
	n.Name = aux.Name
	n.PositionX = aux.PositionX
	n.PositionY = aux.PositionY
	n.RawConfig = aux.Config

	if len(aux.Config) == 0 || string(aux.Config) == "null" {
		return nil
	}

	config, err := DecodeNodeConfig(aux.Type, aux.Config)
	if err != nil {
		return fmt.Errorf("node %s: %w", aux.ID, err)
	}

	n.Config = config

	return nil
}

// DecodeNodeConfig parses raw JSON into the config variant for nodeType.
func DecodeNodeConfig(nodeType NodeType, data []byte) (NodeConfig, error) {
	switch nodeType {
	case NodeTypeTrigger:
		var c TriggerConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid trigger config: %w", err)
		}

		return &c, nil
	case NodeTypeMessage:
		var c MessageConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid message config: %w", err)
		}

		return &c, nil
	case NodeTypeQuestionnaire:
		var c QuestionnaireConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid questionnaire config: %w", err)
		}

		return &c, nil
	case NodeTypeCondition:
		var c ConditionConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid condition config: %w", err)
		}

		return &c, nil
	case NodeTypeHTTP:
		var c HTTPConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("invalid http config: %w", err)
		}

		return &c, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", nodeType)
	}
}
