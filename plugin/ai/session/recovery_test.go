package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/store"
)

func logOf(roles ...store.MessageRole) []*store.ConversationMessage {
	out := make([]*store.ConversationMessage, 0, len(roles))
	for i, r := range roles {
		out = append(out, &store.ConversationMessage{Role: r, Content: string(r), CreatedTs: int64(1000 + i)})
	}
	return out
}

func TestReconstruct(t *testing.T) {
	u, a := store.MessageRoleUser, store.MessageRoleAssistant

	tests := []struct {
		name      string
		log       []*store.ConversationMessage
		questions int
		phase     conversation.Phase
		messages  int
	}{
		{"empty log", nil, 0, conversation.PhaseClassifyIntent, 0},
		{"single user message", logOf(u), 0, conversation.PhaseClassifyIntent, 1},
		{"greeting only", logOf(u, a), 0, conversation.PhaseAssessment, 2},
		{"three questions", logOf(u, a, u, a, u, a, u, a), 3, conversation.PhaseAssessment, 8},
		{"trailing user message", logOf(u, a, u, a, u), 1, conversation.PhaseAssessment, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Reconstruct("s1", tt.log)
			assert.Equal(t, "s1", st.SessionID)
			assert.Equal(t, tt.questions, st.QuestionsAsked)
			assert.Equal(t, tt.phase, st.Phase)
			assert.Len(t, st.Messages, tt.messages)
		})
	}
}

func TestReconstruct_PreservesOrderAndTimes(t *testing.T) {
	log := logOf(store.MessageRoleUser, store.MessageRoleAssistant)
	st := Reconstruct("s1", log)

	assert.Equal(t, conversation.RoleUser, st.Messages[0].Role)
	assert.Equal(t, conversation.RoleAssistant, st.Messages[1].Role)
	assert.True(t, st.Introduced)
	assert.Equal(t, int64(1000), st.CreatedAt.Unix())
	assert.Equal(t, int64(1001), st.LastUpdated.Unix())
}
