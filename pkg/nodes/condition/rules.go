package condition

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/template"
)

// evaluateRule is the default RuleEvaluator. Unknown rule types evaluate to
// false rather than failing the run.
func (h *Handler) evaluateRule(rule models.ConditionRule, ectx *models.ExecutionContext) bool {
	switch rule.Type {
	case models.RuleTypeField:
		return evaluateField(rule, ectx)
	case models.RuleTypeTag:
		return ectx.User != nil && ectx.User.HasTag(rule.Tag)
	case models.RuleTypeTime:
		return inTimeWindow(h.now(), rule.From, rule.To)
	case models.RuleTypeDayOfWeek:
		today := strings.ToLower(h.now().Weekday().String())

		return slices.Contains(rule.Days, today)
	case models.RuleTypeSource:
		source, _ := ectx.TriggerData["type"].(string)

		return source == template.Stringify(rule.Value)
	case models.RuleTypeRandom:
		return h.random() < rule.Probability
	case models.RuleTypeFollower:
		return ectx.User != nil && ectx.User.IsFollower
	default:
		h.logger.Warn("Unknown condition rule type", "rule_type", rule.Type)

		return false
	}
}

// evaluateField resolves the field from execution variables, falling back to
// the contact's custom fields.
func evaluateField(rule models.ConditionRule, ectx *models.ExecutionContext) bool {
	value, exists := ectx.Variables[rule.Field]
	if !exists && ectx.User != nil {
		value, exists = ectx.User.Fields[rule.Field]
	}

	switch rule.Operator {
	case "exists":
		return exists
	case "equals":
		return exists && template.Stringify(value) == template.Stringify(rule.Value)
	case "not_equals":
		return !exists || template.Stringify(value) != template.Stringify(rule.Value)
	case "contains":
		return exists && strings.Contains(template.Stringify(value), template.Stringify(rule.Value))
	case "greater_than":
		left, right, ok := numericPair(value, rule.Value)

		return exists && ok && left > right
	case "less_than":
		left, right, ok := numericPair(value, rule.Value)

		return exists && ok && left < right
	default:
		return false
	}
}

func numericPair(a, b any) (float64, float64, bool) {
	left, okA := toFloat(a)
	right, okB := toFloat(b)

	return left, right, okA && okB
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}

// inTimeWindow reports whether now's clock time falls inside [from, to].
// Windows crossing midnight, like 22:00 to 06:00, wrap.
func inTimeWindow(now time.Time, from, to string) bool {
	fromMin, okFrom := parseClock(from)
	toMin, okTo := parseClock(to)

	if !okFrom || !okTo {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()

	if fromMin <= toMin {
		return nowMin >= fromMin && nowMin <= toMin
	}

	return nowMin >= fromMin || nowMin <= toMin
}

func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}

	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])

	if errH != nil || errM != nil || hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}
