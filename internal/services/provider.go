package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"

	"chatbot-backend/internal/models"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("provider returned an empty response")
	ErrNoMessages      = errors.New("no messages to send")
)

// Provider is an LLM backend the relay can forward a conversation to.
//
// Stream yields text fragments in order. A failure is reported as a final
// ("", err) pair, after which the sequence ends. Providers never fall back to
// a one-shot call when streaming fails.
type Provider interface {
	Name() string
	Send(ctx context.Context, messages []models.Message) (string, error)
	Stream(ctx context.Context, messages []models.Message) iter.Seq2[string, error]
}

// Registry resolves provider names selected by the UI.
type Registry struct {
	providers       map[string]Provider
	defaultProvider string
}

func NewRegistry(defaultProvider string, providers ...Provider) (*Registry, error) {
	r := &Registry{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
	}
	for _, p := range providers {
		if _, dup := r.providers[p.Name()]; dup {
			return nil, fmt.Errorf("provider %q registered twice", p.Name())
		}
		r.providers[p.Name()] = p
	}
	if _, ok := r.providers[defaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q: %w", defaultProvider, ErrUnknownProvider)
	}
	return r, nil
}

// Get returns the named provider. An empty name selects the default.
func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		name = r.defaultProvider
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Default() string {
	return r.defaultProvider
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
