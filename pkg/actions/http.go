package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/flowbotio/flowbot/pkg/template"
)

const (
	defaultActionTimeoutMs = 10000
	maxActionTimeoutMs     = 30000
	maxActionBodyBytes     = 1 << 20
)

// HTTPCallHandler fires the nested HTTP call of an action list. URL, headers
// and body are interpolated; the response status and decoded JSON body land
// on the result.
type HTTPCallHandler struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPCallHandler(client *http.Client, logger *slog.Logger) *HTTPCallHandler {
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPCallHandler{
		client: client,
		logger: logger.With("module", "http_action"),
	}
}

func (h *HTTPCallHandler) Type() models.ActionType {
	return models.ActionTypeHTTP
}

func (h *HTTPCallHandler) Execute(ctx context.Context, ectx *models.ExecutionContext, config models.ActionConfig) (*protocol.ActionOutcome, error) {
	cfg, ok := config.(*models.HTTPAction)
	if !ok {
		return nil, ErrMissingConfig
	}

	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = defaultActionTimeoutMs
	}

	if timeoutMs > maxActionTimeoutMs {
		timeoutMs = maxActionTimeoutMs
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
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	for key, value := range template.ReplaceInMap(cfg.Headers, ectx.Variables) {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxActionBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := map[string]any{"status_code": resp.StatusCode}

	var decoded any
	if err := json.Unmarshal(bodyBytes, &decoded); err == nil {
		result["body"] = decoded
	} else if len(bodyBytes) > 0 {
		result["body"] = string(bodyBytes)
	}

	h.logger.DebugContext(ctx, "HTTP action completed",
		"execution_id", ectx.ExecutionID,
		"status_code", resp.StatusCode,
		"url", url)

	return &protocol.ActionOutcome{Result: result}, nil
}
