// Package session is the two-tier memory for conversation state: a
// TTL-bounded hot cache in front of the durable store, which stays the
// system of record.
package session

import (
	"context"
	"time"

	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/store"
)

// MemoryService loads and saves conversation state.
type MemoryService interface {
	// Load never fails: a session that cannot be read starts fresh.
	Load(ctx context.Context, sessionID string) (*conversation.State, Source)

	// Save persists state and appends the turn's messages to the log.
	// An error means the durable write failed.
	Save(ctx context.Context, state *conversation.State, appended ...conversation.Message) error

	// Clear drops the cached copy of a session.
	Clear(ctx context.Context, sessionID string) error
}

// DurableStore is the system of record. *store.Store implements it.
type DurableStore interface {
	UpsertConversationState(ctx context.Context, upsert *store.ConversationState) (*store.ConversationState, error)
	GetConversationState(ctx context.Context, sessionID string) (*store.ConversationState, error)
	AppendConversationMessages(ctx context.Context, sessionID string, messages ...*store.ConversationMessage) error
	ListConversationMessages(ctx context.Context, find *store.FindConversationMessage) ([]*store.ConversationMessage, error)
	DeleteStaleConversations(ctx context.Context, retention time.Duration) ([]string, error)
}

// Source says where a loaded state came from.
type Source string

const (
	SourceCache         Source = "cache"
	SourceDurable       Source = "durable"
	SourceReconstructed Source = "reconstructed"
	SourceFresh         Source = "fresh"
	// SourceFallback is a fresh state issued because the durable read failed.
	SourceFallback Source = "fallback"
)

// Observer receives load outcomes.
type Observer interface {
	ObserveLoad(source Source)
}

var _ DurableStore = (*store.Store)(nil)
