package services

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/models"
)

type namedProvider struct {
	name string
}

func (p namedProvider) Name() string { return p.name }

func (p namedProvider) Send(ctx context.Context, messages []models.Message) (string, error) {
	return p.name, nil
}

func (p namedProvider) Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {}
}

func TestRegistry_Get(t *testing.T) {
	reg, err := NewRegistry("google", namedProvider{"google"}, namedProvider{"ollama"})
	require.NoError(t, err)

	p, err := reg.Get("")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	p, err = reg.Get("ollama")
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = reg.Get("openai")
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestRegistry_Names(t *testing.T) {
	reg, err := NewRegistry("ollama", namedProvider{"ollama"}, namedProvider{"google"})
	require.NoError(t, err)

	assert.Equal(t, []string{"google", "ollama"}, reg.Names())
	assert.Equal(t, "ollama", reg.Default())
}

func TestNewRegistry_MissingDefault(t *testing.T) {
	_, err := NewRegistry("google", namedProvider{"ollama"})
	assert.True(t, errors.Is(err, ErrUnknownProvider))
}

func TestNewRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry("ollama", namedProvider{"ollama"}, namedProvider{"ollama"})
	assert.Error(t, err)
}
