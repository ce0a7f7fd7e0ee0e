package condition

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testExecution() *models.ExecutionContext {
	return &models.ExecutionContext{
		ExecutionID: "exec-c1234567",
		Variables:   map[string]any{"score": 80.0, "plan": "pro"},
		TriggerData: map[string]any{"type": "comment"},
		User: &models.UserContact{
			ID:         "u1",
			Tags:       []string{"vip"},
			Fields:     map[string]any{"city": "Lisbon"},
			IsFollower: true,
		},
	}
}

func conditionNode(operator models.ConditionOperator, rules ...models.ConditionRule) *models.FlowNode {
	return &models.FlowNode{
		ID:   "cond",
		Type: models.NodeTypeCondition,
		Config: &models.ConditionConfig{
			Operator: operator,
			Rules:    rules,
			Branches: models.ConditionBranches{True: "yes-node", False: "no-node"},
		},
	}
}

func TestExecute_RoutesToBranchTargets(t *testing.T) {
	handler := NewHandler(testLogger())
	ectx := testExecution()

	outcome, err := handler.Execute(context.Background(), ectx, conditionNode(models.ConditionAnd,
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "vip"},
	))
	require.NoError(t, err)

	assert.Equal(t, "yes-node", outcome.NextNodeID)
	assert.Equal(t, true, outcome.Result["result"])

	outcome, err = handler.Execute(context.Background(), ectx, conditionNode(models.ConditionAnd,
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "churned"},
	))
	require.NoError(t, err)

	assert.Equal(t, "no-node", outcome.NextNodeID)
}

func TestExecute_AndShortCircuitsOnFirstFalse(t *testing.T) {
	calls := 0
	handler := NewHandler(testLogger(), WithEvaluator(func(rule models.ConditionRule, _ *models.ExecutionContext) bool {
		calls++

		return false
	}))

	outcome, err := handler.Execute(context.Background(), testExecution(), conditionNode(models.ConditionAnd,
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "a"},
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "b"},
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "c"},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "no-node", outcome.NextNodeID)
}

func TestExecute_OrShortCircuitsOnFirstTrue(t *testing.T) {
	calls := 0
	handler := NewHandler(testLogger(), WithEvaluator(func(rule models.ConditionRule, _ *models.ExecutionContext) bool {
		calls++

		return true
	}))

	outcome, err := handler.Execute(context.Background(), testExecution(), conditionNode(models.ConditionOr,
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "a"},
		models.ConditionRule{Type: models.RuleTypeTag, Tag: "b"},
	))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "yes-node", outcome.NextNodeID)
}

func TestFieldRules(t *testing.T) {
	handler := NewHandler(testLogger())
	ectx := testExecution()

	cases := []struct {
		name string
		rule models.ConditionRule
		want bool
	}{
		{"equals", models.ConditionRule{Type: models.RuleTypeField, Field: "plan", Operator: "equals", Value: "pro"}, true},
		{"not_equals", models.ConditionRule{Type: models.RuleTypeField, Field: "plan", Operator: "not_equals", Value: "free"}, true},
		{"contains", models.ConditionRule{Type: models.RuleTypeField, Field: "plan", Operator: "contains", Value: "r"}, true},
		{"greater_than", models.ConditionRule{Type: models.RuleTypeField, Field: "score", Operator: "greater_than", Value: 50.0}, true},
		{"less_than false", models.ConditionRule{Type: models.RuleTypeField, Field: "score", Operator: "less_than", Value: 50.0}, false},
		{"exists", models.ConditionRule{Type: models.RuleTypeField, Field: "score", Operator: "exists"}, true},
		{"missing field", models.ConditionRule{Type: models.RuleTypeField, Field: "nope", Operator: "exists"}, false},
		{"contact field fallback", models.ConditionRule{Type: models.RuleTypeField, Field: "city", Operator: "equals", Value: "Lisbon"}, true},
		{"not_equals on missing", models.ConditionRule{Type: models.RuleTypeField, Field: "nope", Operator: "not_equals", Value: "x"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, handler.evaluateRule(tc.rule, ectx))
		})
	}
}

func TestTimeAndDayRules(t *testing.T) {
	// Wednesday 2025-06-04 14:30 UTC.
	now := time.Date(2025, 6, 4, 14, 30, 0, 0, time.UTC)
	handler := NewHandler(testLogger(), WithClock(func() time.Time { return now }))
	ectx := testExecution()

	assert.True(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeTime, From: "09:00", To: "18:00"}, ectx))
	assert.False(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeTime, From: "18:00", To: "22:00"}, ectx))

	// Window wrapping midnight.
	assert.False(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeTime, From: "22:00", To: "06:00"}, ectx))

	assert.True(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeDayOfWeek, Days: []string{"monday", "wednesday"}}, ectx))
	assert.False(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeDayOfWeek, Days: []string{"sunday"}}, ectx))
}

func TestSourceRandomAndFollowerRules(t *testing.T) {
	handler := NewHandler(testLogger(), WithRandom(func() float64 { return 0.4 }))
	ectx := testExecution()

	assert.True(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeSource, Value: "comment"}, ectx))
	assert.False(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeSource, Value: "dm"}, ectx))

	assert.True(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeRandom, Probability: 0.5}, ectx))
	assert.False(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeRandom, Probability: 0.3}, ectx))

	assert.True(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeFollower}, ectx))

	ectx.User.IsFollower = false
	assert.False(t, handler.evaluateRule(models.ConditionRule{Type: models.RuleTypeFollower}, ectx))
}

func TestExecute_WrongConfigType(t *testing.T) {
	handler := NewHandler(testLogger())
	node := &models.FlowNode{ID: "cond", Type: models.NodeTypeCondition, Config: &models.MessageConfig{Text: "x"}}

	_, err := handler.Execute(context.Background(), testExecution(), node)
	require.ErrorIs(t, err, ErrBadConfig)
}
