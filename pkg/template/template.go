// Package template provides variable interpolation for message text, URLs
// and request bodies.
package template

import (
	"fmt"
	"regexp"
	"strconv"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// ReplaceVariables substitutes {{key}} tokens with stringified values from
// variables. Unknown keys pass through unchanged so partially populated
// variable sets degrade gracefully instead of failing the send.
func ReplaceVariables(text string, variables map[string]any) string {
	if text == "" || len(variables) == 0 {
		return text
	}

	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := tokenPattern.FindStringSubmatch(token)[1]

		value, ok := variables[key]
		if !ok {
			return token
		}

		return Stringify(value)
	})
}

// ReplaceInMap interpolates every value of the map, returning a new map.
func ReplaceInMap(values map[string]string, variables map[string]any) map[string]string {
	if len(values) == 0 {
		return values
	}

	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = ReplaceVariables(v, variables)
	}

	return out
}

// Stringify renders a variable value the way it appears in message text.
// Floats holding whole numbers print without a decimal part, matching how
// JSON-decoded integers round-trip.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
