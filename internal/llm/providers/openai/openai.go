// Package openai speaks the chat-completions protocol shared by OpenAI,
// OpenRouter and most self-hosted gateways.
package openai

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
	defaultBaseURL  = "https://api.openai.com"
	completionsPath = "/chat/completions"
	defaultTimeout  = 60 * time.Second
)

type Provider struct {
	name     string
	client   *http.Client
	endpoint string
	header   http.Header
}

// NewProvider accepts either a host root ("https://openrouter.ai/api") or a
// full ".../chat/completions" endpoint as baseURL.
func NewProvider(name, baseURL, apiKey string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	return &Provider{
		name:     name,
		client:   &http.Client{Timeout: timeout},
		endpoint: endpointFor(baseURL),
		header:   header,
	}
}

func endpointFor(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(baseURL, completionsPath) {
		return baseURL
	}
	return baseURL + "/v1" + completionsPath
}

func (p *Provider) Name() string {
	return p.name
}

// Complete sends one non-streaming completion. A reply without
// choices[0].message is malformed; a message with null content is not.
func (p *Provider) Complete(ctx context.Context, req llm.ChatRequest) (llm.Completion, error) {
	if req.Model == "" {
		return llm.Completion{}, errors.New("openai: model is required")
	}

	in := completionRequest{
		Model:       req.Model,
		Messages:    make([]message, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for i, m := range req.Messages {
		in.Messages[i] = message{Role: string(m.Role), Content: m.Content}
	}

	var out completionReply
	if err := llm.PostJSON(ctx, p.client, p.name, p.endpoint, p.header, in, &out); err != nil {
		return llm.Completion{}, err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return llm.Completion{}, fmt.Errorf("%w: no choices[0].message", llm.ErrMalformedResponse)
	}

	choice := out.Choices[0]
	return llm.Completion{
		Text:         choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        llm.Usage{InputTokens: out.Usage.PromptTokens, OutputTokens: out.Usage.CompletionTokens},
		Provider:     p.name,
		Model:        req.Model,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type completionReply struct {
	Choices []struct {
		FinishReason string   `json:"finish_reason"`
		Message      *message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}
