// Package mocks provides mock implementations of the protocol interfaces for
// testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/flowbotio/flowbot/pkg/models"
)

// MockSender is a mock implementation of the protocol.Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, channel models.ChannelType, channelID, target string, payload models.WirePayload) (models.SendResult, error) {
	args := m.Called(ctx, channel, channelID, target, payload)

	result, _ := args.Get(0).(models.SendResult)

	return result, args.Error(1)
}

// MockTextTransformer is a mock implementation of the protocol.TextTransformer
// interface.
type MockTextTransformer struct {
	mock.Mock
}

func (m *MockTextTransformer) ProcessMessage(ctx context.Context, text string, config *models.AIConfig, ectx *models.ExecutionContext) (string, error) {
	args := m.Called(ctx, text, config, ectx)

	return args.String(0), args.Error(1)
}

func (m *MockTextTransformer) ExtractField(ctx context.Context, text, fieldType string) (any, error) {
	args := m.Called(ctx, text, fieldType)

	return args.Get(0), args.Error(1)
}

// MockTemplateSource is a mock implementation of the protocol.TemplateSource
// interface.
type MockTemplateSource struct {
	mock.Mock
}

func (m *MockTemplateSource) Templates(ctx context.Context, workspaceID string) ([]models.WhatsAppTemplate, error) {
	args := m.Called(ctx, workspaceID)

	templates, _ := args.Get(0).([]models.WhatsAppTemplate)

	return templates, args.Error(1)
}
