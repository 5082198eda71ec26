package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ConversationState model related methods.
	UpsertConversationState(ctx context.Context, upsert *ConversationState) (*ConversationState, error)
	// GetConversationState returns nil without error when the session has no row.
	GetConversationState(ctx context.Context, sessionID string) (*ConversationState, error)

	// ConversationMessage model related methods. The log is append-only.
	CreateConversationMessage(ctx context.Context, create *ConversationMessage) (*ConversationMessage, error)
	ListConversationMessages(ctx context.Context, find *FindConversationMessage) ([]*ConversationMessage, error)

	// DeleteStaleConversations removes state rows and their messages idle since
	// before the cutoff and returns the purged session ids.
	DeleteStaleConversations(ctx context.Context, delete *DeleteStaleConversations) ([]string, error)
}
