package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// Model and Temperature are fixed for every page request.
const (
	Model       = "llama3-70b-8192"
	Temperature = 0.2
)

// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Completer sends one prompt and returns the model's free-text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientConfig carries everything the chat client needs; nothing is read from the environment.
type ClientConfig struct {
	APIKey  string
	BaseURL string
}

// ChatClient calls an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	client openai.Client
	model  string

	Stats *LLMStats
}

func NewChatClient(cfg ClientConfig) *ChatClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &ChatClient{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
		model: Model,
		Stats: NewLLMStats(time.Hour),
	}
}

// Complete issues a single chat completion. There is no retry.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(Temperature),
	})
	c.Stats.Record(time.Since(start), err != nil)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("chat completion status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model identifier sent with each request.
func (c *ChatClient) Model() string {
	return c.model
}
