package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/acutie/store"
)

func TestConversationStateStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	got, err := ts.GetConversationState(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "absent session reads as nil")

	created, err := ts.UpsertConversationState(ctx, &store.ConversationState{
		SessionID:      "s1",
		Phase:          "assessment",
		QuestionsAsked: 2,
		RiskLevel:      "low",
		Payload:        `{"questionsAsked":2}`,
	})
	require.NoError(t, err)
	firstCreated := created.CreatedTs
	require.NotZero(t, firstCreated)

	_, err = ts.UpsertConversationState(ctx, &store.ConversationState{
		SessionID:      "s1",
		Phase:          "assessment",
		QuestionsAsked: 3,
		RiskLevel:      "moderate",
		Payload:        `{"questionsAsked":3}`,
	})
	require.NoError(t, err)

	got, err = ts.GetConversationState(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(3), got.QuestionsAsked)
	assert.Equal(t, "moderate", got.RiskLevel)
	assert.JSONEq(t, `{"questionsAsked":3}`, got.Payload)
	assert.Equal(t, firstCreated, got.CreatedTs, "upsert keeps the original creation time")

	_, err = ts.UpsertConversationState(ctx, &store.ConversationState{Phase: "assessment"})
	assert.Error(t, err)
}

func TestConversationMessageStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	require.NoError(t, ts.AppendConversationMessages(ctx, "s1",
		&store.ConversationMessage{Role: store.MessageRoleUser, Content: "hi"},
		&store.ConversationMessage{Role: store.MessageRoleAssistant, Content: "hello, how are you feeling?"},
		&store.ConversationMessage{Role: store.MessageRoleUser, Content: "anxious"},
	))
	require.NoError(t, ts.AppendConversationMessages(ctx, "s2",
		&store.ConversationMessage{Role: store.MessageRoleUser, Content: "other session"},
	))

	list, err := ts.ListConversationMessages(ctx, &store.FindConversationMessage{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "hi", list[0].Content)
	assert.Equal(t, "anxious", list[2].Content)
	assert.NotEmpty(t, list[0].UID)
	assert.NotEqual(t, list[0].UID, list[1].UID)

	recent, err := ts.ListConversationMessages(ctx, &store.FindConversationMessage{SessionID: "s1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, store.MessageRoleAssistant, recent[0].Role)
	assert.Equal(t, "anxious", recent[1].Content)

	err = ts.AppendConversationMessages(ctx, "s1", &store.ConversationMessage{Role: "system", Content: "x"})
	assert.Error(t, err, "role is constrained")
}

func TestDeleteStaleConversations(t *testing.T) {
	ctx := context.Background()
	ts, driver := NewTestingStoreWithDriver(ctx, t)

	old := time.Now().Add(-48 * time.Hour).Unix()
	_, err := driver.UpsertConversationState(ctx, &store.ConversationState{
		SessionID: "stale", Phase: "assessment", RiskLevel: "low", Payload: "{}", CreatedTs: old, UpdatedTs: old,
	})
	require.NoError(t, err)
	_, err = ts.UpsertConversationState(ctx, &store.ConversationState{
		SessionID: "fresh", Phase: "assessment", RiskLevel: "low", Payload: "{}",
	})
	require.NoError(t, err)
	require.NoError(t, ts.AppendConversationMessages(ctx, "stale", &store.ConversationMessage{Role: store.MessageRoleUser, Content: "old"}))
	require.NoError(t, ts.AppendConversationMessages(ctx, "fresh", &store.ConversationMessage{Role: store.MessageRoleUser, Content: "new"}))

	ids, err := ts.DeleteStaleConversations(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, ids)

	got, err := ts.GetConversationState(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, got)
	msgs, err := ts.ListConversationMessages(ctx, &store.FindConversationMessage{SessionID: "stale"})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	got, err = ts.GetConversationState(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = ts.DeleteStaleConversations(ctx, 0)
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	v, err := ts.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, ts.Migrate(ctx))
	v, err = ts.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
