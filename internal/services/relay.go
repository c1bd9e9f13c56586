package services

import (
	"context"
	"errors"
	"strings"

	"chatbot-backend/internal/models"
)

// Client-facing messages. Upstream causes are logged, never returned.
const (
	ChatErrorMessage   = "An error occurred while processing your request"
	StreamErrorMessage = "An error occurred during streaming"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Resolve validates req and returns the provider it targets.
func (r *Registry) Resolve(req models.ChatRequest) (Provider, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Message: "Message is required"}
	}
	p, err := r.Get(req.Provider)
	if errors.Is(err, ErrUnknownProvider) {
		return nil, &ValidationError{Message: "Unknown provider: " + req.Provider}
	}
	return p, err
}

// StreamResult describes how a relayed stream ended.
type StreamResult struct {
	Chunks int
	// Err is the upstream failure, already reported to the client as an error event.
	Err error
	// WriteErr is set when emit failed and the relay was abandoned.
	WriteErr error
}

// RelayStream forwards each fragment of the provider stream to emit and ends
// it with exactly one done event on success or one error event on failure.
func RelayStream(ctx context.Context, p Provider, messages []models.Message, emit func(models.StreamChunk) error) StreamResult {
	var res StreamResult
	for text, err := range p.Stream(ctx, messages) {
		if err != nil {
			res.Err = err
			break
		}
		if werr := emit(models.ChunkEvent(text)); werr != nil {
			res.WriteErr = werr
			return res
		}
		res.Chunks++
	}

	if res.Err == nil && ctx.Err() != nil {
		res.Err = ctx.Err()
	}

	final := models.DoneEvent()
	if res.Err != nil {
		final = models.ErrorEvent(StreamErrorMessage)
	}
	if werr := emit(final); werr != nil {
		res.WriteErr = werr
	}
	return res
}
