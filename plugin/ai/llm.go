package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyResponse is returned when a provider answers without content.
var ErrEmptyResponse = errors.New("empty response")

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// ChatRequest is one completion request against a concrete model.
type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Messages returns the request as a system/user message pair.
func (r ChatRequest) Messages() []Message {
	return FormatMessages(r.System, r.Prompt, nil)
}

// ChatClient is the uniform call interface over one provider family.
type ChatClient interface {
	// Complete performs one synchronous completion.
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ProviderError wraps a provider failure with the HTTP status when one is known.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewChatClients builds one client per configured provider, keyed by provider name.
func NewChatClients(cfg *Config) (map[string]ChatClient, error) {
	clients := make(map[string]ChatClient)
	if cfg.OpenAI.Enabled() {
		clients["openai"] = NewOpenAIClient(cfg.OpenAI)
	}
	if cfg.Anthropic.Enabled() {
		client, err := NewAnthropicClient(cfg.Anthropic)
		if err != nil {
			return nil, fmt.Errorf("anthropic client: %w", err)
		}
		clients["anthropic"] = client
	}
	return clients, nil
}

func convertMessages(messages []Message) []llms.MessageContent {
	llmMessages := make([]llms.MessageContent, len(messages))
	for i, m := range messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case "system":
			role = llms.ChatMessageTypeSystem
		case "assistant":
			role = llms.ChatMessageTypeAI
		}

		llmMessages[i] = llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		}
	}
	return llmMessages
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// FormatMessages formats an optional system prompt, history and user content.
func FormatMessages(systemPrompt string, userContent string, history []Message) []Message {
	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, SystemPrompt(systemPrompt))
	}
	messages = append(messages, history...)
	messages = append(messages, UserMessage(userContent))
	return messages
}
