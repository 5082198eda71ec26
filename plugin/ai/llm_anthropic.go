package ai

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

var statusCodePattern = regexp.MustCompile(`status code:?\s*(\d{3})`)

type anthropicClient struct {
	model llms.Model
}

// NewAnthropicClient creates a ChatClient backed by the Anthropic messages API.
// The model name is chosen per request.
func NewAnthropicClient(cfg ProviderConfig) (ChatClient, error) {
	opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	model, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}
	return &anthropicClient{model: model}, nil
}

func (c *anthropicClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.model.GenerateContent(ctx, convertMessages(req.Messages()),
		llms.WithModel(req.Model),
		llms.WithMaxTokens(req.MaxTokens),
		llms.WithTemperature(float64(req.Temperature)),
	)
	if err != nil {
		return "", &ProviderError{Provider: "anthropic", StatusCode: parseStatusCode(err.Error()), Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", &ProviderError{Provider: "anthropic", Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Content, nil
}

// parseStatusCode recovers the HTTP status langchaingo embeds in its error text.
func parseStatusCode(msg string) int {
	m := statusCodePattern.FindStringSubmatch(strings.ToLower(msg))
	if len(m) < 2 {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}
