package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/models"
)

// responseIterator is satisfied by *genai.GenerateContentResponseIterator.
type responseIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel

	// send and stream open a chat session seeded with history and deliver text.
	send   func(ctx context.Context, history []*genai.Content, text string) (*genai.GenerateContentResponse, error)
	stream func(ctx context.Context, history []*genai.Content, text string) responseIterator
}

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p := &GeminiProvider{
		client: client,
		model:  client.GenerativeModel(modelName),
	}
	p.send = func(ctx context.Context, history []*genai.Content, text string) (*genai.GenerateContentResponse, error) {
		cs := p.model.StartChat()
		cs.History = history
		return cs.SendMessage(ctx, genai.Text(text))
	}
	p.stream = func(ctx context.Context, history []*genai.Content, text string) responseIterator {
		cs := p.model.StartChat()
		cs.History = history
		return cs.SendMessageStream(ctx, genai.Text(text))
	}
	return p, nil
}

func (p *GeminiProvider) Name() string {
	return config.ProviderGoogle
}

func (p *GeminiProvider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

func (p *GeminiProvider) Send(ctx context.Context, messages []models.Message) (string, error) {
	history, last, err := toGeminiChat(messages)
	if err != nil {
		return "", err
	}

	resp, err := p.send(ctx, history, last)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (p *GeminiProvider) Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		history, last, err := toGeminiChat(messages)
		if err != nil {
			yield("", err)
			return
		}

		it := p.stream(ctx, history, last)
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("Gemini streaming error: %w", err))
				return
			}
			if text := extractText(resp); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// toGeminiChat splits messages into session history and the text to send.
// Blank turns are dropped because the API rejects empty parts.
func toGeminiChat(messages []models.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", ErrNoMessages
	}

	history := make([]*genai.Content, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		history = append(history, &genai.Content{
			Role:  toGeminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history, messages[len(messages)-1].Content, nil
}

func toGeminiRole(role string) string {
	switch strings.ToLower(role) {
	case "assistant", "model", "ai":
		return "model"
	default:
		return "user"
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
