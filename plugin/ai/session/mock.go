package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hrygo/acutie/store"
)

// MockDurableStore is an in-memory DurableStore with failure injection.
type MockDurableStore struct {
	mu       sync.Mutex
	states   map[string]*store.ConversationState
	messages map[string][]*store.ConversationMessage
	nextID   int64

	// GetErr, UpsertErr, AppendErr and ListErr are returned by the matching call when set.
	GetErr    error
	UpsertErr error
	AppendErr error
	ListErr   error

	Upserts int
}

// NewMockDurableStore creates an empty store.
func NewMockDurableStore() *MockDurableStore {
	return &MockDurableStore{
		states:   make(map[string]*store.ConversationState),
		messages: make(map[string][]*store.ConversationMessage),
	}
}

func (m *MockDurableStore) UpsertConversationState(_ context.Context, upsert *store.ConversationState) (*store.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserts++
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	row := *upsert
	if prev, ok := m.states[row.SessionID]; ok {
		row.CreatedTs = prev.CreatedTs
	}
	row.UpdatedTs = time.Now().Unix()
	m.states[row.SessionID] = &row
	out := row
	return &out, nil
}

func (m *MockDurableStore) GetConversationState(_ context.Context, sessionID string) (*store.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	row, ok := m.states[sessionID]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (m *MockDurableStore) AppendConversationMessages(_ context.Context, sessionID string, messages ...*store.ConversationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	for _, msg := range messages {
		m.nextID++
		row := *msg
		row.ID = m.nextID
		row.SessionID = sessionID
		if row.CreatedTs == 0 {
			row.CreatedTs = time.Now().Unix()
		}
		m.messages[sessionID] = append(m.messages[sessionID], &row)
	}
	return nil
}

func (m *MockDurableStore) ListConversationMessages(_ context.Context, find *store.FindConversationMessage) ([]*store.ConversationMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	list := m.messages[find.SessionID]
	if find.Limit > 0 && len(list) > find.Limit {
		list = list[len(list)-find.Limit:]
	}
	out := make([]*store.ConversationMessage, len(list))
	copy(out, list)
	return out, nil
}

func (m *MockDurableStore) DeleteStaleConversations(_ context.Context, retention time.Duration) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-retention).Unix()
	var ids []string
	for id, row := range m.states {
		if row.UpdatedTs < cutoff {
			delete(m.states, id)
			delete(m.messages, id)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// PutState seeds a state row directly.
func (m *MockDurableStore) PutState(row *store.ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := *row
	m.states[r.SessionID] = &r
}

// Messages returns the logged messages of a session in order.
func (m *MockDurableStore) Messages(sessionID string) []*store.ConversationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*store.ConversationMessage(nil), m.messages[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ DurableStore = (*MockDurableStore)(nil)
