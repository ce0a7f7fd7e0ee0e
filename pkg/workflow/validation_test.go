package workflow

import (
	"encoding/json"
	"testing"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/registry"
	"github.com/stretchr/testify/require"
)

func testValidator() *Validator {
	reg := registry.NewDefaultRegistry(registry.Dependencies{Sender: noopSender()})

	return NewValidator(reg.Schemas())
}

func validFlow() *models.Flow {
	return &models.Flow{
		ID:          "f1",
		WorkspaceID: "ws-1",
		Name:        "valid flow",
		Status:      models.FlowStatusDraft,
		Nodes: []*models.FlowNode{
			{ID: "t1", Type: models.NodeTypeTrigger, Config: &models.TriggerConfig{Kind: models.TriggerKindDM}},
			{ID: "m1", Type: models.NodeTypeMessage, Config: &models.MessageConfig{Text: "hello"}},
		},
		Edges: []*models.FlowEdge{{From: "t1", To: "m1"}},
	}
}

func TestValidateFlow_Valid(t *testing.T) {
	require.NoError(t, testValidator().ValidateFlow(validFlow()))
}

func TestValidateFlow_NoTrigger(t *testing.T) {
	flow := validFlow()
	flow.Nodes = flow.Nodes[1:]
	flow.Edges = nil

	require.ErrorIs(t, testValidator().ValidateFlow(flow), ErrNoTrigger)
}

func TestValidateFlow_DuplicateNodeID(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, &models.FlowNode{ID: "m1", Type: models.NodeTypeMessage, Config: &models.MessageConfig{Text: "again"}})

	require.ErrorIs(t, testValidator().ValidateFlow(flow), ErrDuplicateNodeID)
}

func TestValidateFlow_DanglingEdge(t *testing.T) {
	flow := validFlow()
	flow.Edges = append(flow.Edges, &models.FlowEdge{From: "m1", To: "ghost"})

	require.ErrorIs(t, testValidator().ValidateFlow(flow), ErrDanglingEdge)
}

func TestValidateFlow_DanglingConditionBranch(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, &models.FlowNode{
		ID:   "c1",
		Type: models.NodeTypeCondition,
		Config: &models.ConditionConfig{
			Operator: models.ConditionAnd,
			Rules:    []models.ConditionRule{{Type: models.RuleTypeFollower}},
			Branches: models.ConditionBranches{True: "ghost"},
		},
	})

	require.ErrorIs(t, testValidator().ValidateFlow(flow), ErrDanglingBranch)
}

func TestValidateFlow_MissingConfig(t *testing.T) {
	flow := validFlow()
	flow.Nodes = append(flow.Nodes, &models.FlowNode{ID: "x1", Type: models.NodeTypeMessage})

	require.ErrorIs(t, testValidator().ValidateFlow(flow), ErrMissingConfig)
}

func TestValidateFlow_ConfigTypeMismatch(t *testing.T) {
	flow := validFlow()
	flow.Nodes[1].Config = &models.TriggerConfig{Kind: models.TriggerKindDM}

	require.Error(t, testValidator().ValidateFlow(flow))
}

func TestValidateFlow_StructTagViolation(t *testing.T) {
	flow := validFlow()
	flow.Nodes[1].Config = &models.MessageConfig{} // Text is required

	require.Error(t, testValidator().ValidateFlow(flow))
}

func TestValidateFlow_SchemaValidationOnRawConfig(t *testing.T) {
	// A config that decodes fine but violates the schema: empty text.
	flow := validFlow()
	flow.Nodes[1].RawConfig = []byte(`{"text":""}`)
	flow.Nodes[1].Config = &models.MessageConfig{Text: "placeholder"}

	err := testValidator().ValidateFlow(flow)
	require.Error(t, err)
	require.Contains(t, err.Error(), "m1")
}

func TestFlowNode_UnmarshalRejectsWrongConfigShape(t *testing.T) {
	var node models.FlowNode

	err := json.Unmarshal([]byte(`{"id":"m2","type":"message","config":{"text":"hi","delay_ms":"soon"}}`), &node)
	require.Error(t, err)
}
