package store

// ConversationState is the durable row for one session. Payload holds the
// full serialized state; Phase, QuestionsAsked and RiskLevel are copied out
// for querying.
type ConversationState struct {
	SessionID      string
	Phase          string
	QuestionsAsked int32
	RiskLevel      string
	Payload        string // JSON
	CreatedTs      int64
	UpdatedTs      int64
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type ConversationMessage struct {
	ID        int64
	UID       string
	SessionID string
	Role      MessageRole
	Content   string
	CreatedTs int64
}

type FindConversationMessage struct {
	SessionID string
	// Limit keeps only the most recent messages when positive.
	Limit int
}

type DeleteStaleConversations struct {
	UpdatedBefore int64
}
