package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/llm"
	"github.com/yash23jamak/LegacyLift-B/internal/logging"
	"github.com/yash23jamak/LegacyLift-B/internal/observability"
	"github.com/yash23jamak/LegacyLift-B/internal/prompt"
)

// SentinelReply stands in for a reply that carried no text. It never decodes
// as JSON, so the batch degrades to a decode failure instead of vanishing.
const SentinelReply = "Analysis failed."

// DefaultRequestTimeout bounds a single gateway call.
const DefaultRequestTimeout = 60 * time.Second

// Gateway sends one assembled prompt and returns the reply text.
// Errors are *llm.GatewayError.
type Gateway interface {
	Complete(ctx context.Context, p prompt.Prompt, role string) (string, error)
}

// ModelGateway sends prompts to the provider the strategy picks for a role.
type ModelGateway struct {
	Strategy *Strategy
	Timeout  time.Duration
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// Complete performs one chat completion bounded by Timeout.
func (g *ModelGateway) Complete(ctx context.Context, p prompt.Prompt, role string) (string, error) {
	logger := logging.OrNop(g.Logger)

	provider, route, err := g.Strategy.ResolveModel(role)
	if err != nil {
		gwErr := llm.Classify(err)
		g.Metrics.RecordGatewayFailure(string(gwErr.Kind))
		logger.Warn("no model for role", zap.String("role", role), zap.Error(err))
		return "", gwErr
	}
	g.Metrics.RecordModelUsage(role, route.Name)

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := provider.Complete(ctx, route.Request(p.System, p.User))
	if err != nil {
		gwErr := llm.Classify(err)
		g.Metrics.RecordGatewayFailure(string(gwErr.Kind))
		logger.Warn("gateway call failed",
			zap.String("provider", provider.Name()),
			zap.String("model", route.Model),
			zap.String("kind", string(gwErr.Kind)),
			zap.Int("status_code", gwErr.StatusCode),
			zap.Error(err),
		)
		return "", gwErr
	}

	if resp.Text == "" {
		logger.Warn("gateway reply had no content", zap.String("model", route.Model), zap.String("finish_reason", resp.FinishReason))
		return SentinelReply, nil
	}
	logger.Debug("gateway reply",
		zap.String("model", route.Model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return resp.Text, nil
}

// CachedGateway memoizes successful replies for identical prompts.
type CachedGateway struct {
	next    Gateway
	cache   *expirable.LRU[string, string]
	metrics *observability.Metrics
}

// NewCachedGateway wraps next with an expiring LRU of the given size.
// A non-positive size returns next unchanged.
func NewCachedGateway(next Gateway, size int, ttl time.Duration, metrics *observability.Metrics) Gateway {
	if size <= 0 {
		return next
	}
	return &CachedGateway{
		next:    next,
		cache:   expirable.NewLRU[string, string](size, nil, ttl),
		metrics: metrics,
	}
}

// Complete returns a cached reply or forwards to the wrapped gateway.
func (c *CachedGateway) Complete(ctx context.Context, p prompt.Prompt, role string) (string, error) {
	key := cacheKey(p, role)
	if text, ok := c.cache.Get(key); ok {
		c.metrics.RecordCacheLookup(true)
		return text, nil
	}
	c.metrics.RecordCacheLookup(false)

	text, err := c.next.Complete(ctx, p, role)
	if err != nil {
		return "", err
	}
	if text != SentinelReply {
		c.cache.Add(key, text)
	}
	return text, nil
}

// Len reports the number of cached replies.
func (c *CachedGateway) Len() int {
	return c.cache.Len()
}

func cacheKey(p prompt.Prompt, role string) string {
	h := sha256.New()
	for _, part := range []string{role, p.System, p.User} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
