package file

import (
	"context"
	"testing"
	"time"

	"github.com/flowbotio/flowbot/pkg/models"
	"github.com/flowbotio/flowbot/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlow(id, groupID string, status models.FlowStatus) *models.Flow {
	return &models.Flow{
		ID:          id,
		WorkspaceID: "ws-1",
		Name:        "welcome flow",
		Version:     1,
		Status:      status,
		FlowGroupID: groupID,
		Nodes: []*models.FlowNode{
			{ID: "t1", Type: models.NodeTypeTrigger, Config: &models.TriggerConfig{Kind: models.TriggerKindDM}},
			{ID: "m1", Type: models.NodeTypeMessage, Config: &models.MessageConfig{Text: "Hi {{name}}"}},
		},
		Edges:     []*models.FlowEdge{{From: "t1", To: "m1"}},
		CreatedAt: time.Now().UTC(),
	}
}

func TestFlowRepository_RoundTrip(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveFlow(ctx, testFlow("f1", "g1", models.FlowStatusDraft)))

	loaded, err := repo.FlowByID(ctx, "f1")
	require.NoError(t, err)

	assert.Equal(t, "welcome flow", loaded.Name)
	require.Len(t, loaded.Nodes, 2)

	cfg, ok := loaded.Nodes[1].Config.(*models.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "Hi {{name}}", cfg.Text)
}

func TestFlowRepository_NotFound(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.FlowRepository().FlowByID(context.Background(), "missing")
	require.ErrorIs(t, err, persistence.ErrFlowNotFound)
}

func TestFlowRepository_PublishedFlowByGroup(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveFlow(ctx, testFlow("f1", "g1", models.FlowStatusUnpublished)))
	require.NoError(t, repo.SaveFlow(ctx, testFlow("f2", "g1", models.FlowStatusPublished)))
	require.NoError(t, repo.SaveFlow(ctx, testFlow("f3", "g2", models.FlowStatusDraft)))

	published, err := repo.PublishedFlowByGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "f2", published.ID)

	_, err = repo.PublishedFlowByGroup(ctx, "g2")
	require.ErrorIs(t, err, persistence.ErrPublishedFlowNotFound)
}

func TestFlowRepository_Delete(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.FlowRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveFlow(ctx, testFlow("f1", "g1", models.FlowStatusDraft)))
	require.NoError(t, repo.DeleteFlow(ctx, "f1"))

	_, err := repo.FlowByID(ctx, "f1")
	require.ErrorIs(t, err, persistence.ErrFlowNotFound)

	// Deleting twice is fine.
	require.NoError(t, repo.DeleteFlow(ctx, "f1"))
}

func TestUserRepository_RoundTrip(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.UserRepository()
	ctx := context.Background()

	lastInbound := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.SaveUser(ctx, &models.UserContact{
		ID:            "u1",
		Name:          "Ana",
		Tags:          []string{"vip"},
		LastInboundAt: &lastInbound,
	}))

	loaded, err := repo.UserByID(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, "Ana", loaded.Name)
	assert.True(t, loaded.HasTag("vip"))
	require.NotNil(t, loaded.LastInboundAt)
	assert.True(t, loaded.LastInboundAt.Equal(lastInbound))
}

func TestExecutionRepository_SuspendResumeLifecycle(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.ExecutionRepository()
	ctx := context.Background()

	ectx := &models.ExecutionContext{
		ExecutionID:   "exec-12345678",
		FlowID:        "f1",
		UserID:        "u1",
		ChannelType:   models.ChannelWhatsApp,
		Variables:     map[string]any{"name": "Ana"},
		CurrentNodeID: "q-node",
		Questionnaire: &models.QuestionnaireState{QuestionIndex: 1, Retries: 0},
		StartedAt:     time.Now().UTC(),
	}

	require.NoError(t, repo.SaveSuspended(ctx, ectx))

	loaded, err := repo.SuspendedByUser(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, "exec-12345678", loaded.ExecutionID)
	assert.Equal(t, "q-node", loaded.CurrentNodeID)
	require.NotNil(t, loaded.Questionnaire)
	assert.Equal(t, 1, loaded.Questionnaire.QuestionIndex)

	require.NoError(t, repo.DeleteSuspended(ctx, "u1"))

	_, err = repo.SuspendedByUser(ctx, "u1")
	require.ErrorIs(t, err, persistence.ErrExecutionNotFound)
}

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, NewPersistence(dir).HealthCheck(context.Background()))
	require.Error(t, NewPersistence(dir+"/nope").HealthCheck(context.Background()))
}
