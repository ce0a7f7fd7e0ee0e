package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceVariables_Simple(t *testing.T) {
	result := ReplaceVariables("Hi {{name}}", map[string]any{"name": "Ana"})
	assert.Equal(t, "Hi Ana", result)
}

func TestReplaceVariables_UnresolvedTokenPassesThrough(t *testing.T) {
	result := ReplaceVariables("Hi {{missing}}", map[string]any{})
	assert.Equal(t, "Hi {{missing}}", result)

	result = ReplaceVariables("Hi {{missing}}", map[string]any{"name": "Ana"})
	assert.Equal(t, "Hi {{missing}}", result)
}

func TestReplaceVariables_MixedResolution(t *testing.T) {
	vars := map[string]any{"first": "Ana", "order": 42.0}

	result := ReplaceVariables("{{first}}, order {{order}} ({{status}})", vars)
	assert.Equal(t, "Ana, order 42 ({{status}})", result)
}

func TestReplaceVariables_Whitespace(t *testing.T) {
	result := ReplaceVariables("Hi {{ name }}", map[string]any{"name": "Ana"})
	assert.Equal(t, "Hi Ana", result)
}

func TestReplaceVariables_NonStringValues(t *testing.T) {
	vars := map[string]any{
		"count":   3.0,
		"price":   19.99,
		"active":  true,
		"nothing": nil,
	}

	assert.Equal(t, "3 items", ReplaceVariables("{{count}} items", vars))
	assert.Equal(t, "costs 19.99", ReplaceVariables("costs {{price}}", vars))
	assert.Equal(t, "active=true", ReplaceVariables("active={{active}}", vars))
	assert.Equal(t, "x", ReplaceVariables("x{{nothing}}", vars))
}

func TestReplaceInMap(t *testing.T) {
	headers := map[string]string{
		"Authorization": "Bearer {{token}}",
		"X-Static":      "fixed",
	}

	out := ReplaceInMap(headers, map[string]any{"token": "abc"})
	assert.Equal(t, "Bearer abc", out["Authorization"])
	assert.Equal(t, "fixed", out["X-Static"])
}
