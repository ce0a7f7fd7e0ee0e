package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowbotio/flowbot/pkg/channels"
	"github.com/flowbotio/flowbot/pkg/compliance"
	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingSender(sent *[]models.WirePayload) protocol.Sender {
	return protocol.SenderFunc(func(_ context.Context, _ models.ChannelType, _, _ string, payload models.WirePayload) (models.SendResult, error) {
		*sent = append(*sent, payload)

		return models.SendResult{Success: true, MessageID: "m1"}, nil
	})
}

func TestSendMessageHandler_InterpolatesAndSends(t *testing.T) {
	var sent []models.WirePayload

	logger := testLogger()
	dispatcher := channels.NewDispatcher(recordingSender(&sent), logger)
	policy := compliance.NewEngine(compliance.NewMemoryCounterStore(), logger)
	handler := NewSendMessageHandler(dispatcher, policy, logger)

	ectx := testExecution()

	outcome, err := handler.Execute(context.Background(), ectx, &models.SendMessageAction{Text: "Hi {{name}}"})
	require.NoError(t, err)

	assert.Equal(t, true, outcome.Result["sent"])
	require.Len(t, sent, 1)
	assert.Equal(t, "Hi Ana", sent[0].Text)
}

func TestSendMessageHandler_PolicyDenialDoesNotSend(t *testing.T) {
	var sent []models.WirePayload

	logger := testLogger()
	dispatcher := channels.NewDispatcher(recordingSender(&sent), logger)
	policy := compliance.NewEngine(compliance.NewMemoryCounterStore(), logger)
	handler := NewSendMessageHandler(dispatcher, policy, logger)

	// Messenger with no inbound message yet: window check denies.
	ectx := testExecution()
	ectx.ChannelType = models.ChannelMessenger

	outcome, err := handler.Execute(context.Background(), ectx, &models.SendMessageAction{Text: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, false, outcome.Result["sent"])
	assert.Equal(t, string(models.FallbackHold), outcome.Result["fallback"])
	assert.Empty(t, sent)
}

func TestAddTagHandler_NoContactLoaded(t *testing.T) {
	ectx := testExecution()
	ectx.User = nil

	outcome, err := NewAddTagHandler().Execute(context.Background(), ectx, &models.AddTagAction{Tag: "vip"})
	require.NoError(t, err)

	assert.Equal(t, false, outcome.Result["tagged"])
}

func TestSetFieldHandler_InterpolatesStringValues(t *testing.T) {
	ectx := testExecution()

	outcome, err := NewSetFieldHandler().Execute(context.Background(), ectx, &models.SetFieldAction{
		Field: "greeting",
		Value: "Hello {{name}}",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello Ana", outcome.Result["value"])
	assert.Equal(t, "Hello Ana", ectx.Variables["greeting"])
}

func TestSetFieldHandler_InitializesNilVariables(t *testing.T) {
	ectx := testExecution()
	ectx.Variables = nil

	_, err := NewSetFieldHandler().Execute(context.Background(), ectx, &models.SetFieldAction{
		Field: "k",
		Value: 42.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 42.0, ectx.Variables["k"])
}

func TestHTTPCallHandler_InterpolatedRequest(t *testing.T) {
	var gotPath, gotHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("X-User")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	handler := NewHTTPCallHandler(server.Client(), testLogger())
	ectx := testExecution()

	outcome, err := handler.Execute(context.Background(), ectx, &models.HTTPAction{
		URL:     server.URL + "/users/{{name}}",
		Headers: map[string]string{"X-User": "{{name}}"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/users/Ana", gotPath)
	assert.Equal(t, "Ana", gotHeader)
	assert.Equal(t, http.StatusOK, outcome.Result["status_code"])

	body, ok := outcome.Result["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, body["ok"])
}

func TestHTTPCallHandler_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	handler := NewHTTPCallHandler(server.Client(), testLogger())

	outcome, err := handler.Execute(context.Background(), testExecution(), &models.HTTPAction{URL: server.URL})
	require.NoError(t, err)

	assert.Equal(t, "plain text", outcome.Result["body"])
}

func TestDelayHandler_ClampsDuration(t *testing.T) {
	handler := NewDelayHandler()

	var slept time.Duration

	handler.sleep = func(_ context.Context, d time.Duration) error {
		slept = d

		return nil
	}

	outcome, err := handler.Execute(context.Background(), testExecution(), &models.DelayAction{DurationMs: 600000})
	require.NoError(t, err)

	assert.Equal(t, time.Duration(maxDelayMs)*time.Millisecond, slept)
	assert.Equal(t, maxDelayMs, outcome.Result["delayed_ms"])
}

func TestDelayHandler_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDelayHandler().Execute(ctx, testExecution(), &models.DelayAction{DurationMs: 5000})
	require.ErrorIs(t, err, context.Canceled)
}

func TestJumpHandler(t *testing.T) {
	outcome, err := NewJumpHandler().Execute(context.Background(), testExecution(), &models.JumpAction{NodeID: "node-7"})
	require.NoError(t, err)

	assert.Equal(t, "node-7", outcome.JumpTo)
}
