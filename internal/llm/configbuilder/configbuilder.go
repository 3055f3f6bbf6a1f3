// Package configbuilder turns the providers and models sections of the
// config into a populated llm.Registry.
package configbuilder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yash23jamak/LegacyLift-B/internal/config"
	"github.com/yash23jamak/LegacyLift-B/internal/llm"
	llmollama "github.com/yash23jamak/LegacyLift-B/internal/llm/providers/ollama"
	llmopenai "github.com/yash23jamak/LegacyLift-B/internal/llm/providers/openai"
)

type factory func(name string, cfg config.ProviderConfig) llm.Provider

func chatCompletions(name string, cfg config.ProviderConfig) llm.Provider {
	return llmopenai.NewProvider(name, cfg.BaseURL, cfg.APIKey, cfg.Timeout)
}

// factories is keyed by providers.<name>.type.
var factories = map[string]factory{
	"openrouter": chatCompletions,
	"openai":     chatCompletions,
	"vllm":       chatCompletions,
	"lmstudio":   chatCompletions,
	"custom":     chatCompletions,
	"ollama": func(name string, cfg config.ProviderConfig) llm.Provider {
		return llmollama.NewProvider(name, cfg.BaseURL, cfg.Timeout)
	},
}

// BuildRegistryFromConfig registers every provider and model route. A model
// without its own model name inherits the provider's; a route that ends up
// with neither is rejected.
func BuildRegistryFromConfig(cfg *config.Config) (*llm.Registry, error) {
	if len(cfg.Models) == 0 {
		return nil, errors.New("no models configured")
	}
	reg := llm.NewRegistry()

	for _, name := range sortedKeys(cfg.Providers) {
		pCfg := cfg.Providers[name]
		build, ok := factories[pCfg.Type]
		if !ok {
			return nil, fmt.Errorf("provider %s: unknown type %q", name, pCfg.Type)
		}
		reg.RegisterProvider(name, build(name, pCfg))
	}

	for _, id := range sortedKeys(cfg.Models) {
		mCfg := cfg.Models[id]
		route := llm.ModelRoute{
			Provider:    mCfg.Provider,
			Model:       mCfg.Model,
			Temperature: llm.DefaultTemperature,
			MaxTokens:   mCfg.MaxTokens,
		}
		if route.Model == "" {
			route.Model = cfg.Providers[mCfg.Provider].Model
		}
		if route.Model == "" {
			return nil, fmt.Errorf("model %s: no model name on the route or provider %q", id, mCfg.Provider)
		}
		if mCfg.Temperature != nil {
			route.Temperature = *mCfg.Temperature
		}
		reg.RegisterModel(id, route, mCfg.Default)
	}

	if _, _, err := reg.Resolve(""); err != nil {
		return nil, fmt.Errorf("default model: %w", err)
	}
	return reg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
