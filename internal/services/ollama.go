package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/models"
)

// OllamaProvider talks to a local Ollama runtime through its OpenAI-compatible API.
type OllamaProvider struct {
	client *openai.Client
	model  string
}

func NewOllamaProvider(baseURL, apiKey, model string) *OllamaProvider {
	if apiKey == "" {
		apiKey = "ollama" // Ollama ignores the key but the SDK requires one.
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &OllamaProvider{
		client: &client,
		model:  model,
	}
}

func (p *OllamaProvider) Name() string {
	return config.ProviderOllama
}

func (p *OllamaProvider) Send(ctx context.Context, messages []models.Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}

	resp, err := p.client.Chat.Completions.New(ctx, p.params(messages))
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OllamaProvider) Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if len(messages) == 0 {
			yield("", ErrNoMessages)
			return
		}

		stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(messages))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("Ollama streaming error: %w", err))
		}
	}
}

func (p *OllamaProvider) params(messages []models.Message) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages: toOllamaMessages(messages),
		Model:    p.model,
	}
}

func toOllamaMessages(messages []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "model", "assistant", "ai":
			out = append(out, openai.AssistantMessage(m.Content))
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
