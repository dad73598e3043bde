// Package llm adapts hosted chat-completion providers to the ChatModel port.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"docchat/internal/domain"
)

type OpenAIChat struct {
	client openai.Client
	model  string
}

// NewOpenAIChat builds a streaming chat client. baseURL may be empty for the
// default OpenAI endpoint.
func NewOpenAIChat(apiKey, baseURL, model string) (*OpenAIChat, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("chat api key is empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIChat{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// NewOpenAIChatFromEnv reads the key from the named environment variable.
func NewOpenAIChatFromEnv(keyEnv, baseURL, model string) (*OpenAIChat, error) {
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("environment variable %s is not set", keyEnv)
	}
	return NewOpenAIChat(key, baseURL, model)
}

func (c *OpenAIChat) ModelName() string {
	return c.model
}

// Stream sends the conversation and invokes onDelta for every text fragment
// the provider produces, in order.
func (c *OpenAIChat) Stream(ctx context.Context, system string, messages []domain.Message, onDelta func(string) error) error {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1),
	}
	if system != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(system))
	}
	for _, m := range messages {
		text := m.Text()
		switch m.Role {
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(text))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(text))
		}
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	return nil
}
