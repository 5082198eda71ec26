package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/acutie/internal/profile"
)

// Store provides database access to conversation state and the message log.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) UpsertConversationState(ctx context.Context, upsert *ConversationState) (*ConversationState, error) {
	if upsert.SessionID == "" {
		return nil, errors.New("session id is required")
	}
	now := time.Now().Unix()
	if upsert.CreatedTs == 0 {
		upsert.CreatedTs = now
	}
	upsert.UpdatedTs = now
	return s.driver.UpsertConversationState(ctx, upsert)
}

func (s *Store) GetConversationState(ctx context.Context, sessionID string) (*ConversationState, error) {
	return s.driver.GetConversationState(ctx, sessionID)
}

// AppendConversationMessages inserts messages in order, assigning UIDs and timestamps.
func (s *Store) AppendConversationMessages(ctx context.Context, sessionID string, messages ...*ConversationMessage) error {
	now := time.Now().Unix()
	for _, m := range messages {
		m.SessionID = sessionID
		if m.UID == "" {
			m.UID = shortuuid.New()
		}
		if m.CreatedTs == 0 {
			m.CreatedTs = now
		}
		if _, err := s.driver.CreateConversationMessage(ctx, m); err != nil {
			return errors.Wrapf(err, "failed to append message to session %s", sessionID)
		}
	}
	return nil
}

func (s *Store) ListConversationMessages(ctx context.Context, find *FindConversationMessage) ([]*ConversationMessage, error) {
	return s.driver.ListConversationMessages(ctx, find)
}

// DeleteStaleConversations removes sessions idle for longer than retention
// and returns their ids.
func (s *Store) DeleteStaleConversations(ctx context.Context, retention time.Duration) ([]string, error) {
	if retention <= 0 {
		return nil, errors.Errorf("invalid retention %s", retention)
	}
	cutoff := time.Now().Add(-retention).Unix()
	return s.driver.DeleteStaleConversations(ctx, &DeleteStaleConversations{UpdatedBefore: cutoff})
}
