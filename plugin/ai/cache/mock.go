package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MockCacheService is an in-memory CacheService with failure injection.
type MockCacheService struct {
	mu    sync.Mutex
	store map[string][]byte

	// SetErr and DeleteErr, when set, are returned by the matching call.
	SetErr    error
	DeleteErr error
	// Unavailable makes every Get a miss.
	Unavailable bool

	Gets, Sets, Deletes int
	LastTTL             time.Duration
}

// NewMockCacheService creates an empty mock.
func NewMockCacheService() *MockCacheService {
	return &MockCacheService{store: make(map[string][]byte)}
}

func (m *MockCacheService) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.Unavailable {
		return nil, false
	}
	v, ok := m.store[key]
	return v, ok
}

func (m *MockCacheService) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	m.LastTTL = ttl
	if m.SetErr != nil {
		return m.SetErr
	}
	m.store[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockCacheService) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.store, key)
	return nil
}

func (m *MockCacheService) Invalidate(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	for key := range m.store {
		if key == pattern || (wildcard && strings.HasPrefix(key, prefix)) {
			delete(m.store, key)
		}
	}
	return nil
}

// Has reports whether key is stored.
func (m *MockCacheService) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[key]
	return ok
}

// Size returns the number of stored keys.
func (m *MockCacheService) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

var _ CacheService = (*MockCacheService)(nil)
