package model

// Rule is the file representation of a packet rule
type Rule struct {
	Name        string                 `yaml:"name" json:"name"`
	Enabled     bool                   `yaml:"enabled" json:"enabled"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Thresholds  map[string]interface{} `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// RuleInfo describes a registered rule to observers
type RuleInfo struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// PatternGroup is one themed group of instruction patterns
type PatternGroup struct {
	Name     string   `yaml:"name" json:"name"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}
