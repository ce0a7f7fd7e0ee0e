package httprequest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/flowbotio/flowbot/pkg/actions"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testExecution() *models.ExecutionContext {
	return &models.ExecutionContext{
		ExecutionID: "exec-h1234567",
		Variables:   map[string]any{"user_id": "u42"},
		User:        &models.UserContact{ID: "u1"},
	}
}

func httpNode(cfg *models.HTTPConfig) *models.FlowNode {
	return &models.FlowNode{ID: "h1", Type: models.NodeTypeHTTP, Config: cfg}
}

func testRunner() *actions.Runner {
	logger := testLogger()

	return actions.NewRunner(logger, actions.NewSetFieldHandler(), actions.NewJumpHandler())
}

func TestExecute_ResponseMappingIntoVariables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/u42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order":{"id":"o-9","total":42.5},"items":[{"sku":"a"},{"sku":"b"}]}`))
	}))
	defer server.Close()

	handler := NewHandler(server.Client(), testRunner(), testLogger())
	ectx := testExecution()

	outcome, err := handler.Execute(context.Background(), ectx, httpNode(&models.HTTPConfig{
		URL: server.URL + "/orders/{{user_id}}",
		ResponseMapping: map[string]string{
			"order_id":  "order.id",
			"total":     "order.total",
			"first_sku": "items.0.sku",
			"missing":   "order.nope",
		},
	}))
	require.NoError(t, err)

	assert.Empty(t, outcome.SoftError)
	assert.Equal(t, http.StatusOK, outcome.Result["status_code"])
	assert.Equal(t, "o-9", ectx.Variables["order_id"])
	assert.Equal(t, 42.5, ectx.Variables["total"])
	assert.Equal(t, "a", ectx.Variables["first_sku"])
	assert.NotContains(t, ectx.Variables, "missing")
}

func TestExecute_OnSuccessActionsRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	handler := NewHandler(server.Client(), testRunner(), testLogger())
	ectx := testExecution()

	outcome, err := handler.Execute(context.Background(), ectx, httpNode(&models.HTTPConfig{
		URL: server.URL,
		OnSuccess: []models.Action{
			{Type: models.ActionTypeSetField, Config: &models.SetFieldAction{Field: "synced", Value: true}},
			{Type: models.ActionTypeJump, Config: &models.JumpAction{NodeID: "after-sync"}},
		},
	}))
	require.NoError(t, err)

	assert.Equal(t, true, ectx.Variables["synced"])
	assert.Equal(t, "after-sync", outcome.NextNodeID)
}

func TestExecute_ServerErrorIsSoftErrorWithOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	handler := NewHandler(server.Client(), testRunner(), testLogger())
	ectx := testExecution()

	outcome, err := handler.Execute(context.Background(), ectx, httpNode(&models.HTTPConfig{
		URL: server.URL,
		OnError: []models.Action{
			{Type: models.ActionTypeSetField, Config: &models.SetFieldAction{Field: "sync_failed", Value: true}},
		},
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.SoftError)
	assert.Equal(t, http.StatusBadGateway, outcome.Result["status_code"])
	assert.Equal(t, true, ectx.Variables["sync_failed"])
}

func TestExecute_NetworkFailureIsSoftError(t *testing.T) {
	handler := NewHandler(nil, nil, testLogger())

	outcome, err := handler.Execute(context.Background(), testExecution(), httpNode(&models.HTTPConfig{
		URL:       "http://127.0.0.1:1/unreachable",
		TimeoutMs: 200,
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, outcome.SoftError)
	assert.Equal(t, 0, outcome.Result["status_code"])
}

func TestExecute_WrongConfigType(t *testing.T) {
	handler := NewHandler(nil, nil, testLogger())
	node := &models.FlowNode{ID: "h1", Type: models.NodeTypeHTTP, Config: &models.MessageConfig{Text: "x"}}

	_, err := handler.Execute(context.Background(), testExecution(), node)
	require.ErrorIs(t, err, ErrBadConfig)
}
