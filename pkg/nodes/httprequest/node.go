// Package httprequest implements the outbound HTTP call node with response
// mapping into execution variables and success/error action lists.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/flowbotio/flowbot/pkg/actions"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/template"
)

var ErrBadConfig = errors.New("node config is not an http config")

const (
	maxTimeoutMs = 30000
	maxBodyBytes = 1 << 20
)

// Handler executes HTTP nodes. Network failures and non-2xx statuses are
// soft errors routed through the node's error path.
type Handler struct {
	client *http.Client
	runner *actions.Runner
	logger *slog.Logger
}

// NewHandler creates an HTTP node handler. Pass nil for client to use a
// default one.
func NewHandler(client *http.Client, runner *actions.Runner, logger *slog.Logger) *Handler {
	if client == nil {
		client = &http.Client{}
	}

	return &Handler{
		client: client,
		runner: runner,
		logger: logger.With("module", "http_node"),
	}
}

// Type implements protocol.NodeHandler.
func (h *Handler) Type() models.NodeType {
	return models.NodeTypeHTTP
}

// Execute performs the request with a bounded timeout.
func (h *Handler) Execute(ctx context.Context, ectx *models.ExecutionContext, node *models.FlowNode) (*protocol.NodeOutcome, error) {
	cfg, ok := node.Config.(*models.HTTPConfig)
	if !ok {
		return nil, ErrBadConfig
	}

	statusCode, body, err := h.perform(ctx, ectx, cfg)
	if err != nil || statusCode < 200 || statusCode >= 300 {
		return h.failure(ctx, ectx, cfg, statusCode, err)
	}

	mapped := applyResponseMapping(ectx, cfg.ResponseMapping, body)

	outcome := &protocol.NodeOutcome{
		Action: "http_request",
		Result: map[string]any{"status_code": statusCode},
	}

	if len(mapped) > 0 {
		outcome.Result["mapped"] = mapped
	}

	if len(cfg.OnSuccess) > 0 && h.runner != nil {
		jumpTo, results, err := h.runner.Run(ctx, ectx, cfg.OnSuccess)
		if err != nil {
			return nil, err
		}

		outcome.Result["on_success"] = results
		outcome.NextNodeID = jumpTo
	}

	return outcome, nil
}

func (h *Handler) perform(ctx context.Context, ectx *models.ExecutionContext, cfg *models.HTTPConfig) (int, []byte, error) {
	timeoutMs := cfg.Timeout()
	if timeoutMs > maxTimeoutMs {
		timeoutMs = maxTimeoutMs
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	url := template.ReplaceVariables(cfg.URL, ectx.Variables)

	var bodyReader io.Reader
	if cfg.Body != "" {
		bodyReader = strings.NewReader(template.ReplaceVariables(cfg.Body, ectx.Variables))
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, value := range template.ReplaceInMap(cfg.Headers, ectx.Variables) {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

func (h *Handler) failure(ctx context.Context, ectx *models.ExecutionContext, cfg *models.HTTPConfig, statusCode int, cause error) (*protocol.NodeOutcome, error) {
	message := fmt.Sprintf("unexpected status %d", statusCode)
	if cause != nil {
		message = cause.Error()
	}

	h.logger.WarnContext(ctx, "HTTP node failed",
		"execution_id", ectx.ExecutionID,
		"status_code", statusCode,
		"error", message)

	outcome := &protocol.NodeOutcome{
		Action:    "http_request",
		Result:    map[string]any{"status_code": statusCode},
		SoftError: message,
	}

	if len(cfg.OnError) > 0 && h.runner != nil {
		jumpTo, results, err := h.runner.Run(ctx, ectx, cfg.OnError)
		if err != nil {
			return nil, err
		}

		outcome.Result["on_error"] = results
		outcome.NextNodeID = jumpTo
	}

	return outcome, nil
}

// applyResponseMapping copies response fields into execution variables using
// dot paths. Paths missing from the response are skipped, not zeroed.
func applyResponseMapping(ectx *models.ExecutionContext, mapping map[string]string, body []byte) []string {
	if len(mapping) == 0 || !json.Valid(body) {
		return nil
	}

	if ectx.Variables == nil {
		ectx.Variables = make(map[string]any)
	}

	var mapped []string

	for name, path := range mapping {
		value := gjson.GetBytes(body, path)
		if !value.Exists() {
			continue
		}

		ectx.Variables[name] = value.Value()
		mapped = append(mapped, name)
	}

	return mapped
}

// Schema implements protocol.NodeHandler.
func (h *Handler) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url":        map[string]any{"type": "string", "minLength": 1},
			"method":     map[string]any{"type": "string"},
			"headers":    map[string]any{"type": "object"},
			"body":       map[string]any{"type": "string"},
			"timeout_ms": map[string]any{"type": "integer", "minimum": 1},
			"response_mapping": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"on_success": map[string]any{"type": "array"},
			"on_error":   map[string]any{"type": "array"},
		},
		"required": []any{"url"},
	}
}
