package ai

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockChatClient is a testify mock of ChatClient.
type MockChatClient struct {
	mock.Mock
}

// Complete records the call and returns the configured result.
func (m *MockChatClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockEmbeddingService is a deterministic embedding service for tests.
// Texts sharing words produce similar vectors; Vectors pins exact outputs.
type MockEmbeddingService struct {
	mu      sync.Mutex
	Vectors map[string][]float32
	Err     error
	Calls   int
}

// NewMockEmbeddingService creates a new MockEmbeddingService.
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{Vectors: make(map[string][]float32)}
}

// Embed returns the pinned or bag-of-words vector for text.
func (m *MockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds each text.
func (m *MockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.Vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = bagOfWords(text)
	}
	return out, nil
}

const mockDimensions = 64

func bagOfWords(text string) []float32 {
	v := make([]float32, mockDimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?'\"")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		v[h.Sum32()%mockDimensions]++
	}
	return v
}

// Ensure mocks implement their interfaces
var (
	_ ChatClient       = (*MockChatClient)(nil)
	_ EmbeddingService = (*MockEmbeddingService)(nil)
)
