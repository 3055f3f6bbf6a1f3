package pipeline

import (
	"errors"
	"strings"

	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/llm"
)

// Strategy chooses the model for each job role.
type Strategy struct {
	registry *llm.Registry
	cfg      config.StrategyConfig
	roles    map[string]string
}

// NewStrategy builds a strategy selector.
func NewStrategy(reg *llm.Registry, cfg config.StrategyConfig) *Strategy {
	return &Strategy{registry: reg, cfg: cfg, roles: cfg.RoleModels()}
}

// ResolveModel picks the role's model, then strategy.default_model, then the
// fallbacks in order, then the registry default. Unresolvable ids are skipped.
func (s *Strategy) ResolveModel(role string) (llm.Provider, llm.ModelRoute, error) {
	if s == nil || s.registry == nil {
		return nil, llm.ModelRoute{}, errors.New("no model registry configured")
	}
	role = strings.ToLower(strings.TrimSpace(role))
	candidates := append([]string{s.roles[role], s.cfg.DefaultModel}, s.cfg.Fallbacks...)
	for _, modelID := range candidates {
		if strings.TrimSpace(modelID) == "" {
			continue
		}
		if p, route, err := s.registry.Resolve(modelID); err == nil {
			return p, route, nil
		}
	}
	return s.registry.Resolve("")
}
