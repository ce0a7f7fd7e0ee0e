package questionnaire

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flowbotio/flowbot/pkg/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,}$`)
)

// validateAnswer checks raw user text against the question's constraints and
// returns the value to save. Number answers save the parsed float; everything
// else saves the trimmed text.
func validateAnswer(question models.Question, raw string) (any, bool) {
	text := strings.TrimSpace(raw)

	if text == "" {
		return "", !question.Validation.Required && question.AnswerType != models.AnswerTypeNumber
	}

	if question.Validation.Pattern != "" {
		pattern, err := regexp.Compile(question.Validation.Pattern)
		if err != nil || !pattern.MatchString(text) {
			return nil, false
		}
	}

	switch question.AnswerType {
	case models.AnswerTypeNumber:
		number, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false
		}

		if !inRange(number, question.Validation) {
			return nil, false
		}

		return number, true

	case models.AnswerTypeEmail:
		if !emailPattern.MatchString(text) {
			return nil, false
		}

	case models.AnswerTypePhone:
		if !phonePattern.MatchString(text) {
			return nil, false
		}
	}

	// Min/Max bound the text length for non-number answers.
	if !inRange(float64(len(text)), question.Validation) {
		return nil, false
	}

	return text, true
}

func inRange(value float64, v models.AnswerValidation) bool {
	if v.Min != nil && value < *v.Min {
		return false
	}

	if v.Max != nil && value > *v.Max {
		return false
	}

	return true
}
