// Package registry wires node and action handlers into the lookup tables the
// executor dispatches on.
package registry

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flowbotio/flowbot/pkg/actions"
	"github.com/flowbotio/flowbot/pkg/channels"
	"github.com/flowbotio/flowbot/pkg/compliance"
	"github.com/flowbotio/flowbot/pkg/log"
	"github.com/flowbotio/flowbot/pkg/models"
	conditionnode "github.com/flowbotio/flowbot/pkg/nodes/condition"
	httpnode "github.com/flowbotio/flowbot/pkg/nodes/httprequest"
	messagenode "github.com/flowbotio/flowbot/pkg/nodes/message"
	questionnairenode "github.com/flowbotio/flowbot/pkg/nodes/questionnaire"
	"github.com/flowbotio/flowbot/pkg/protocol"
)

// Registry maps node types to their handlers.
type Registry struct {
	logger   *slog.Logger
	handlers map[models.NodeType]protocol.NodeHandler
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		handlers: make(map[models.NodeType]protocol.NodeHandler),
	}
}

// Register adds or replaces the handler for its node type.
func (r *Registry) Register(handler protocol.NodeHandler) {
	r.handlers[handler.Type()] = handler
}

// Handler returns the handler for a node type.
func (r *Registry) Handler(nodeType models.NodeType) (protocol.NodeHandler, error) {
	handler, ok := r.handlers[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type %q not registered", nodeType)
	}

	return handler, nil
}

// Schemas returns the config schema of every registered handler, keyed by
// node type. Publish validation iterates this.
func (r *Registry) Schemas() map[models.NodeType]map[string]any {
	schemas := make(map[models.NodeType]map[string]any, len(r.handlers))
	for nodeType, handler := range r.handlers {
		schemas[nodeType] = handler.Schema()
	}

	return schemas
}

// Dependencies collects the collaborators the default handler set needs.
// Sender is required; nil AI degrades to passthrough, nil Templates disables
// the WhatsApp template fallback.
type Dependencies struct {
	Sender     protocol.Sender
	Compliance *compliance.Engine
	AI         protocol.TextTransformer
	Templates  protocol.TemplateSource
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewDefaultRegistry wires the built-in node handlers and the action runner
// they share.
func NewDefaultRegistry(deps Dependencies) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = log.Setup("info")
	}

	policy := deps.Compliance
	if policy == nil {
		policy = compliance.NewEngine(compliance.NewMemoryCounterStore(), logger)
	}

	dispatcher := channels.NewDispatcher(deps.Sender, logger)

	runner := actions.NewRunner(logger,
		actions.NewSendMessageHandler(dispatcher, policy, logger),
		actions.NewAddTagHandler(),
		actions.NewSetFieldHandler(),
		actions.NewHTTPCallHandler(deps.HTTPClient, logger),
		actions.NewDelayHandler(),
		actions.NewJumpHandler(),
	)

	registry := NewRegistry(logger)
	registry.Register(messagenode.NewHandler(dispatcher, policy, deps.Templates, deps.AI, logger))
	registry.Register(questionnairenode.NewHandler(dispatcher, deps.AI, runner, logger))
	registry.Register(conditionnode.NewHandler(logger))
	registry.Register(httpnode.NewHandler(deps.HTTPClient, runner, logger))

	return registry
}
