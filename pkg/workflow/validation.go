package workflow

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"

	"github.com/flowbotio/flowbot/pkg/models"
)

var (
	ErrNoTrigger       = errors.New("flow has no trigger node")
	ErrDuplicateNodeID = errors.New("duplicate node id")
	ErrDanglingEdge    = errors.New("edge references unknown node")
	ErrDanglingBranch  = errors.New("condition branch references unknown node")
	ErrMissingConfig   = errors.New("node has no config")
)

// Validator checks a flow before publishing: struct tags, graph integrity
// and, when raw node JSON is available, the per-node config schemas.
type Validator struct {
	validate *validator.Validate
	schemas  map[models.NodeType]map[string]any
}

// NewValidator creates a flow validator. Schemas come from the handler
// registry; a node type absent from the map skips schema validation.
func NewValidator(schemas map[models.NodeType]map[string]any) *Validator {
	return &Validator{
		validate: validator.New(),
		schemas:  schemas,
	}
}

// ValidateFlow returns the first problem found, or nil.
func (v *Validator) ValidateFlow(flow *models.Flow) error {
	if err := v.validate.Struct(flow); err != nil {
		return fmt.Errorf("flow failed validation: %w", err)
	}

	if len(flow.TriggerNodes()) == 0 {
		return ErrNoTrigger
	}

	nodeIDs := make(map[string]bool, len(flow.Nodes))

	for _, node := range flow.Nodes {
		if nodeIDs[node.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
		}

		nodeIDs[node.ID] = true

		if err := v.validateNode(node); err != nil {
			return err
		}
	}

	for _, edge := range flow.Edges {
		if !nodeIDs[edge.From] {
			return fmt.Errorf("%w: %s -> %s (from)", ErrDanglingEdge, edge.From, edge.To)
		}

		if !nodeIDs[edge.To] {
			return fmt.Errorf("%w: %s -> %s (to)", ErrDanglingEdge, edge.From, edge.To)
		}
	}

	for _, node := range flow.Nodes {
		cfg, ok := node.Config.(*models.ConditionConfig)
		if !ok {
			continue
		}

		for _, target := range []string{cfg.Branches.True, cfg.Branches.False} {
			if target != "" && !nodeIDs[target] {
				return fmt.Errorf("%w: node %s -> %s", ErrDanglingBranch, node.ID, target)
			}
		}
	}

	return nil
}

func (v *Validator) validateNode(node *models.FlowNode) error {
	if node.Config == nil {
		return fmt.Errorf("%w: node %s", ErrMissingConfig, node.ID)
	}

	if node.Config.NodeType() != node.Type {
		return fmt.Errorf("node %s: config type %s does not match node type %s", node.ID, node.Config.NodeType(), node.Type)
	}

	if err := v.validate.Struct(node.Config); err != nil {
		return fmt.Errorf("node %s failed validation: %w", node.ID, err)
	}

	// Schema validation needs the raw JSON; nodes built in code skip it.
	schema, ok := v.schemas[node.Type]
	if !ok || len(node.RawConfig) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewBytesLoader(node.RawConfig),
	)
	if err != nil {
		return fmt.Errorf("node %s schema validation failed: %w", node.ID, err)
	}

	if !result.Valid() {
		return fmt.Errorf("node %s config invalid: %s", node.ID, result.Errors()[0].String())
	}

	return nil
}
