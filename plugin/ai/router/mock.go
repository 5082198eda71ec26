package router

// MockRouterService is a mock implementation of RouterService for testing.
// Every task resolves to a stub model tagged with its task name.
type MockRouterService struct {
	// ModelOverrides allows tests to override model selection results
	ModelOverrides map[TaskType]ModelConfig
}

// NewMockRouterService creates a new MockRouterService.
func NewMockRouterService() *MockRouterService {
	return &MockRouterService{
		ModelOverrides: make(map[TaskType]ModelConfig),
	}
}

// ConfigFor returns the override for the task, or a stub config.
func (m *MockRouterService) ConfigFor(task TaskType) ModelConfig {
	if mc, ok := m.ModelOverrides[task]; ok {
		mc.Task = task
		return mc
	}
	return ModelConfig{
		Task:      task,
		Provider:  "mock",
		Model:     "mock-" + string(task),
		MaxTokens: 100,
	}
}

// Ensure MockRouterService implements RouterService
var _ RouterService = (*MockRouterService)(nil)
