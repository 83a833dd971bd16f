package steward

import "time"

// Config holds configuration for the Steward engine.
type Config struct {
	// CacheTTL is the time-to-live for cached authorization results.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// MaxHierarchyDepth bounds the ancestor walk during inheritance block
	// evaluation. Defaults to 64.
	MaxHierarchyDepth int `json:"max_hierarchy_depth,omitempty"`

	// EnableDecisionLog controls whether each Authorize call is recorded
	// to the decision log. Defaults to true.
	EnableDecisionLog *bool `json:"enable_decision_log,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	t := true
	return Config{
		MaxHierarchyDepth: 64,
		EnableDecisionLog: &t,
	}
}

func (c Config) decisionLogEnabled() bool {
	return c.EnableDecisionLog == nil || *c.EnableDecisionLog
}
