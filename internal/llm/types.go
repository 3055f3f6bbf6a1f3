package llm

import "context"

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultTemperature applies when a model route does not set one.
const DefaultTemperature = 0.2

// ChatMessage is one turn of a prompt.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`
}

// ChatRequest is what the pipeline asks a provider to complete.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// Usage is the token accounting a backend reports, when it reports any.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total sums input and output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Completion is a finished reply. Text is empty when the backend answered
// with a choice that carried no content; that is not an error.
type Completion struct {
	Text         string
	FinishReason string
	Usage        Usage
	Provider     string
	Model        string
}

// Provider completes chat requests against one backend.
//
// Complete returns *StatusError for non-2xx replies and wraps
// ErrMalformedResponse when the envelope cannot be read. Transport errors are
// passed through untouched so Classify can inspect them.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req ChatRequest) (Completion, error)
}
