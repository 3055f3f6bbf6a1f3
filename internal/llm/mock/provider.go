// Package mock provides an in-memory llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/yash23jamak/LegacyLift-B/internal/llm"
)

// Provider records every request. It replies with CompleteFn when set, then
// with Replies in order, and finally with an empty JSON array.
type Provider struct {
	NameValue  string
	CompleteFn func(ctx context.Context, req llm.ChatRequest) (llm.Completion, error)
	Replies    []string

	mu       sync.Mutex
	requests []llm.ChatRequest
}

// Replying returns a provider that answers with texts in order.
func Replying(texts ...string) *Provider {
	return &Provider{Replies: texts}
}

func (p *Provider) Name() string {
	if p.NameValue != "" {
		return p.NameValue
	}
	return "mock"
}

func (p *Provider) Complete(ctx context.Context, req llm.ChatRequest) (llm.Completion, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	text := "[]"
	if p.CompleteFn == nil && len(p.Replies) > 0 {
		text, p.Replies = p.Replies[0], p.Replies[1:]
	}
	p.mu.Unlock()

	if p.CompleteFn != nil {
		return p.CompleteFn(ctx, req)
	}
	return llm.Completion{Text: text, FinishReason: "stop", Provider: p.Name(), Model: req.Model}, nil
}

// Requests returns a snapshot of what the provider has seen.
func (p *Provider) Requests() []llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.ChatRequest(nil), p.requests...)
}
