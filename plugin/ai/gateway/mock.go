package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/hrygo/acutie/plugin/ai/prompt"
	"github.com/hrygo/acutie/plugin/ai/router"
)

// MockInvoker is a scripted Invoker for testing.
// Replies are keyed by task; a task with no script fails with KindNotConfigured.
type MockInvoker struct {
	mu      sync.Mutex
	replies map[router.TaskType][]MockReply
	sticky  map[router.TaskType]MockReply
	calls   []MockCall
}

// MockReply is one scripted outcome; Kind set means failure.
type MockReply struct {
	Text  string
	Kind  ErrorKind
	Delay time.Duration
	Panic bool
}

// MockCall records one Invoke.
type MockCall struct {
	Task   router.TaskType
	Prompt string
}

// NewMockInvoker creates a new MockInvoker.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{
		replies: make(map[router.TaskType][]MockReply),
		sticky:  make(map[router.TaskType]MockReply),
	}
}

// Queue adds one-shot replies for task, consumed in order before the sticky reply.
func (m *MockInvoker) Queue(task router.TaskType, replies ...MockReply) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[task] = append(m.replies[task], replies...)
	return m
}

// Always sets the reply used for task once its queue is empty.
func (m *MockInvoker) Always(task router.TaskType, reply MockReply) *MockInvoker {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sticky[task] = reply
	return m
}

// Calls returns recorded calls.
func (m *MockInvoker) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of calls for task.
func (m *MockInvoker) CallCount(task router.TaskType) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Task == task {
			n++
		}
	}
	return n
}

// Invoke returns the next scripted reply for cfg.Task.
func (m *MockInvoker) Invoke(ctx context.Context, cfg router.ModelConfig, text string, _ ...Option) Result {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Task: cfg.Task, Prompt: text})
	reply, ok := m.sticky[cfg.Task]
	if queue := m.replies[cfg.Task]; len(queue) > 0 {
		reply, ok = queue[0], true
		m.replies[cfg.Task] = queue[1:]
	}
	m.mu.Unlock()

	if !ok {
		reply = MockReply{Kind: KindNotConfigured}
	}
	if reply.Panic {
		panic("scripted panic for " + string(cfg.Task))
	}
	if reply.Delay > 0 {
		if err := sleep(ctx, reply.Delay); err != nil {
			return Result{Kind: KindTimeout, Attempts: 1, Fallback: prompt.ErrorMessage(string(KindTimeout))}
		}
	}
	if reply.Kind != "" {
		return Result{Kind: reply.Kind, Attempts: 1, Fallback: prompt.ErrorMessage(string(reply.Kind))}
	}
	return Result{OK: true, Text: reply.Text, Attempts: 1}
}

// Ensure MockInvoker implements Invoker
var _ Invoker = (*MockInvoker)(nil)
