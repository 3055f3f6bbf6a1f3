// Package ollama drives a local Ollama daemon through /api/chat.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yash23jamak/LegacyLift-B/internal/llm"
)

const (
	defaultBaseURL = "http://127.0.0.1:11434"
	chatPath       = "/api/chat"
	// Local models load lazily, so the first call can be slow.
	defaultTimeout = 120 * time.Second
)

type Provider struct {
	name     string
	client   *http.Client
	endpoint string
}

func NewProvider(name, baseURL string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		name:     name,
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(baseURL, "/") + chatPath,
	}
}

func (p *Provider) Name() string {
	return p.name
}

// Complete runs a non-streaming chat. Ollama reports no finish reason on
// this path, so "stop" is assumed once the reply is done.
func (p *Provider) Complete(ctx context.Context, req llm.ChatRequest) (llm.Completion, error) {
	if req.Model == "" {
		return llm.Completion{}, errors.New("ollama: model is required")
	}

	in := chatRequest{
		Model:    req.Model,
		Messages: make([]message, len(req.Messages)),
		Options:  options{Temperature: req.Temperature, NumPredict: req.MaxTokens},
	}
	for i, m := range req.Messages {
		in.Messages[i] = message{Role: string(m.Role), Content: m.Content}
	}

	var out chatReply
	if err := llm.PostJSON(ctx, p.client, p.name, p.endpoint, nil, in, &out); err != nil {
		return llm.Completion{}, err
	}
	if out.Message == nil {
		return llm.Completion{}, fmt.Errorf("%w: no message", llm.ErrMalformedResponse)
	}

	reason := out.DoneReason
	if reason == "" {
		reason = "stop"
	}
	return llm.Completion{
		Text:         out.Message.Content,
		FinishReason: reason,
		Usage:        llm.Usage{InputTokens: out.PromptEvalCount, OutputTokens: out.EvalCount},
		Provider:     p.name,
		Model:        req.Model,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  options   `json:"options"`
}

type chatReply struct {
	Message         *message `json:"message"`
	DoneReason      string   `json:"done_reason"`
	PromptEvalCount int      `json:"prompt_eval_count"`
	EvalCount       int      `json:"eval_count"`
}
