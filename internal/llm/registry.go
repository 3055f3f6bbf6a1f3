package llm

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownModel is returned by Resolve for ids with no usable route.
var ErrUnknownModel = errors.New("unknown model")

// ModelRoute binds a logical model id to a provider and its model name.
type ModelRoute struct {
	Name        string
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Request builds a chat request for this route. The system turn is omitted
// when empty so single-message prompts go out as a lone user turn.
func (r ModelRoute) Request(system, user string) ChatRequest {
	msgs := make([]ChatMessage, 0, 2)
	if system != "" {
		msgs = append(msgs, ChatMessage{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, ChatMessage{Role: RoleUser, Content: user})
	return ChatRequest{
		Model:       r.Model,
		Messages:    msgs,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
	}
}

// Registry maps model ids to routes and routes to providers.
type Registry struct {
	providers    map[string]Provider
	routes       map[string]ModelRoute
	defaultModel string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		routes:    make(map[string]ModelRoute),
	}
}

func (r *Registry) RegisterProvider(name string, p Provider) {
	r.providers[name] = p
}

// RegisterModel adds a route under id. The first route registered becomes the
// default until one is registered with isDefault set.
func (r *Registry) RegisterModel(id string, route ModelRoute, isDefault bool) {
	route.Name = id
	r.routes[id] = route
	if isDefault || r.defaultModel == "" {
		r.defaultModel = id
	}
}

func (r *Registry) DefaultModel() string {
	return r.defaultModel
}

// Routes returns every registered route ordered by id.
func (r *Registry) Routes() []ModelRoute {
	out := make([]ModelRoute, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve looks up id, or the default model when id is empty.
func (r *Registry) Resolve(id string) (Provider, ModelRoute, error) {
	if id == "" {
		id = r.defaultModel
	}
	route, ok := r.routes[id]
	if !ok {
		return nil, ModelRoute{}, fmt.Errorf("%w %q", ErrUnknownModel, id)
	}
	p, ok := r.providers[route.Provider]
	if !ok {
		return nil, ModelRoute{}, fmt.Errorf("%w %q: provider %q not configured", ErrUnknownModel, id, route.Provider)
	}
	return p, route, nil
}
