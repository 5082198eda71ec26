package session

import (
	"time"

	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/store"
)

// Reconstruct rebuilds a best-effort state from the message log of a
// session whose state row is missing. The opening assistant turn is the
// introduction, so every later assistant turn counts as one question.
func Reconstruct(sessionID string, log []*store.ConversationMessage) *conversation.State {
	st := conversation.New(sessionID)
	if len(log) == 0 {
		return st
	}

	assistantTurns := 0
	for _, m := range log {
		switch conversation.Role(m.Role) {
		case conversation.RoleAssistant:
			st.AppendAssistant(m.Content)
			assistantTurns++
		default:
			st.AppendUser(m.Content)
		}
	}

	st.QuestionsAsked = max(assistantTurns-1, 0)
	st.Introduced = assistantTurns > 0
	if len(log) >= 2 {
		st.Phase = conversation.PhaseAssessment
	}
	if ts := log[0].CreatedTs; ts > 0 {
		st.CreatedAt = time.Unix(ts, 0)
	}
	if ts := log[len(log)-1].CreatedTs; ts > 0 {
		st.LastUpdated = time.Unix(ts, 0)
	}
	return st
}
