// Package questionnaire implements the multi-question input node. The node
// suspends the run after each prompt; progress lives in the execution
// context, not in a parked goroutine.
package questionnaire

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flowbotio/flowbot/pkg/actions"
	"github.com/flowbotio/flowbot/pkg/channels"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/template"
)

var (
	ErrBadConfig   = errors.New("node config is not a questionnaire config")
	ErrNoQuestions = errors.New("questionnaire has no questions")
)

// Handler executes questionnaire nodes.
type Handler struct {
	dispatcher *channels.Dispatcher
	ai         protocol.TextTransformer
	runner     *actions.Runner
	logger     *slog.Logger
}

// NewHandler creates a questionnaire node handler.
func NewHandler(dispatcher *channels.Dispatcher, ai protocol.TextTransformer, runner *actions.Runner, logger *slog.Logger) *Handler {
	if ai == nil {
		ai = protocol.PassthroughTransformer{}
	}

	return &Handler{
		dispatcher: dispatcher,
		ai:         ai,
		runner:     runner,
		logger:     logger.With("module", "questionnaire_node"),
	}
}

// Type implements protocol.NodeHandler.
func (h *Handler) Type() models.NodeType {
	return models.NodeTypeQuestionnaire
}

// Execute enters the node for the first time: ask the first question and
// suspend.
func (h *Handler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode) (*protocol.NodeOutcome, error) {
	cfg, ok := node.Config.(*models.QuestionnaireConfig)
	if !ok {
		return nil, ErrBadConfig
	}

	if len(cfg.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	ectx.Questionnaire = &models.QuestionnaireState{}

	return h.ask(ctx, ectx, node, cfg.Questions[0])
}

// Resume re-enters a suspended questionnaire with the user's answer.
func (h *Handler) Resume(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, input models.InboundMessage) (*protocol.NodeOutcome, error) {
	cfg, ok := node.Config.(*models.QuestionnaireConfig)
	if !ok {
		return nil, ErrBadConfig
	}

	state := ectx.Questionnaire
	if state == nil || state.QuestionIndex >= len(cfg.Questions) {
		return nil, ErrNoQuestions
	}

	question := cfg.Questions[state.QuestionIndex]

	value, valid := validateAnswer(question, input.Text)
	if !valid {
		return h.handleInvalid(ctx, ectx, node, cfg, question, input)
	}

	if question.AIExtract {
		extracted, err := h.ai.ExtractField(ctx, input.Text, question.FieldType)
		if err != nil {
			h.logger.WarnContext(ctx, "AI extraction failed, saving raw answer",
				"execution_id", ectx.ExecutionID,
				"question_id", question.ID,
				"error", err)
		} else {
			value = extracted
		}
	}

	h.save(ectx, question.SaveTo, value)

	return h.advance(ctx, ectx, node, cfg)
}

func (h *Handler) handleInvalid(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, cfg *models.QuestionnaireConfig, question models.Question, input models.InboundMessage) (*protocol.NodeOutcome, error) {
	state := ectx.Questionnaire
	state.Retries++

	if state.Retries <= question.Retry {
		h.logger.DebugContext(ctx, "Invalid answer, re-asking",
			"execution_id", ectx.ExecutionID,
			"question_id", question.ID,
			"retries", state.Retries)

		return h.ask(ctx, ectx, node, question)
	}

	switch question.OnFail {
	case models.FailActionHuman:
		// Permanent handoff: suspend with no automatic resumption path.
		return &protocol.NodeOutcome{
			Action: "questionnaire_handoff",
			Result: map[string]any{"question_id": question.ID, "answer": input.Text},
			Suspend: &models.WaitingFor{
				NodeID:        node.ID,
				QuestionID:    question.ID,
				ExpectedInput: "human",
			},
		}, nil

	case models.FailActionAIHelp:
		// One AI-assisted re-ask; a further invalid answer falls through to
		// skip because retries stay exhausted.
		if state.Retries == question.Retry+1 {
			prompt := question.Prompt

			helped, err := h.ai.ProcessMessage(ctx, prompt, &models.AIConfig{Enabled: true, Instructions: "rephrase and clarify"}, ectx)
			if err == nil {
				prompt = helped
			}

			reworded := question
			reworded.Prompt = prompt

			return h.ask(ctx, ectx, node, reworded)
		}

		fallthrough

	default: // skip
		h.logger.InfoContext(ctx, "Question skipped after exhausted retries",
			"execution_id", ectx.ExecutionID,
			"question_id", question.ID)

		return h.advance(ctx, ectx, node, cfg)
	}
}

// advance moves to the next question or finishes the questionnaire.
func (h *Handler) advance(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, cfg *models.QuestionnaireConfig) (*protocol.NodeOutcome, error) {
	state := ectx.Questionnaire
	state.QuestionIndex++
	state.Retries = 0

	if state.QuestionIndex < len(cfg.Questions) {
		return h.ask(ctx, ectx, node, cfg.Questions[state.QuestionIndex])
	}

	ectx.Questionnaire = nil

	outcome := &protocol.NodeOutcome{
		Action: "questionnaire_complete",
		Result: map[string]any{"questions": len(cfg.Questions)},
	}

	if len(cfg.OnComplete) > 0 && h.runner != nil {
		jumpTo, results, err := h.runner.Run(ctx, ectx, cfg.OnComplete)
		if err != nil {
			return nil, err
		}

		outcome.Result["on_complete"] = results
		outcome.NextNodeID = jumpTo
	}

	return outcome, nil
}

// ask sends the question prompt and suspends on its answer.
func (h *Handler) ask(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode, question models.Question) (*protocol.NodeOutcome, error) {
	prompt := template.ReplaceVariables(question.Prompt, ectx.Variables)

	result := h.dispatcher.SendMessage(ctx, ectx.ChannelType, ectx.ChannelID, ectx.UserID, models.NormalizedMessage{Text: prompt})

	expected := string(question.AnswerType)
	if expected == "" {
		expected = string(models.AnswerTypeText)
	}

	return &protocol.NodeOutcome{
		Action: "ask_question",
		Result: map[string]any{"question_id": question.ID, "sent": result.Success},
		Suspend: &models.WaitingFor{
			NodeID:        node.ID,
			QuestionID:    question.ID,
			ExpectedInput: expected,
		},
	}, nil
}

func (h *Handler) save(ectx *models.ExecutionContext, key string, value any) {
	if ectx.Variables == nil {
		ectx.Variables = make(map[string]any)
	}

	ectx.Variables[key] = value
}

// Schema implements protocol.NodeHandler.
func (h *Handler) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"prompt":      map[string]any{"type": "string"},
						"save_to":     map[string]any{"type": "string"},
						"answer_type": map[string]any{"enum": []any{"text", "number", "email", "phone"}},
						"retry":       map[string]any{"type": "integer", "minimum": 0},
						"on_fail":     map[string]any{"enum": []any{"skip", "ai_help", "human"}},
						"ai_extract":  map[string]any{"type": "boolean"},
						"field_type":  map[string]any{"type": "string"},
						"validation": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"required": map[string]any{"type": "boolean"},
								"pattern":  map[string]any{"type": "string"},
								"min":      map[string]any{"type": "number"},
								"max":      map[string]any{"type": "number"},
							},
						},
					},
					"required": []any{"id", "prompt", "save_to"},
				},
			},
			"on_complete": map[string]any{"type": "array"},
		},
		"required": []any{"questions"},
	}
}
