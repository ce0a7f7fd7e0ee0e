package protocol

import (
	"context"

	"github.com/flowbotio/flowbot/pkg/models"
)

// TextTransformer is the opaque AI capability. Implementations must degrade
// to passthrough when unconfigured; the engine relies on that contract
// instead of failing when AI is unavailable.
type TextTransformer interface {
	// ProcessMessage rewrites outbound text according to the AI config.
	ProcessMessage(ctx context.Context, text string, config *models.AIConfig, ectx *models.ExecutionContext) (string, error)

	// ExtractField pulls a typed value out of free-form user text.
	ExtractField(ctx context.Context, text, fieldType string) (any, error)
}

// PassthroughTransformer is the identity TextTransformer used when no AI
// capability is configured.
type PassthroughTransformer struct{}

// ProcessMessage returns the text unchanged.
func (PassthroughTransformer) ProcessMessage(_ context.Context, text string, _ *models.AIConfig, _ *models.ExecutionContext) (string, error) {
	return text, nil
}

// ExtractField returns the raw text.
func (PassthroughTransformer) ExtractField(_ context.Context, text, _ string) (any, error) {
	return text, nil
}
