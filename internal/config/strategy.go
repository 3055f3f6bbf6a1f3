package config

// StrategyConfig defines per-role model selections and fallbacks.
type StrategyConfig struct {
	DefaultModel   string   `mapstructure:"default_model"`
	AnalysisModel  string   `mapstructure:"analysis_model"`
	ReportModel    string   `mapstructure:"report_model"`
	MigrationModel string   `mapstructure:"migration_model"`
	Fallbacks      []string `mapstructure:"fallbacks"` // ordered fallback model ids
}

// RoleModels returns the configured role->model bindings, skipping empty ones.
func (s StrategyConfig) RoleModels() map[string]string {
	out := make(map[string]string, 3)
	for role, model := range map[string]string{
		"analysis":  s.AnalysisModel,
		"report":    s.ReportModel,
		"migration": s.MigrationModel,
	} {
		if model != "" {
			out[role] = model
		}
	}
	return out
}
