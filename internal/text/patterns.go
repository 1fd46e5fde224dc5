package text

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"threat-sentinel/internal/model"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const builtinPatternsFile = "patterns/default_patterns.yaml"

//go:embed patterns/*.yaml
var patternsFS embed.FS

// ErrNoPatterns is returned when a pattern source declares no usable pattern
var ErrNoPatterns = errors.New("no instruction patterns defined")

type patternFile struct {
	Groups []model.PatternGroup `yaml:"groups" json:"groups"`
}

// DefaultPatternGroups returns the built-in instruction pattern groups in
// their declared order.
func DefaultPatternGroups() ([]model.PatternGroup, error) {
	data, err := patternsFS.ReadFile(builtinPatternsFile)
	if err != nil {
		return nil, fmt.Errorf("read builtin patterns (%s): %w", builtinPatternsFile, err)
	}
	return ParsePatternGroupsYAML(data)
}

// ParsePatternGroupsYAML decodes pattern groups from YAML
func ParsePatternGroupsYAML(data []byte) ([]model.PatternGroup, error) {
	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse patterns yaml: %w", err)
	}
	return checkGroups(pf.Groups)
}

// ParsePatternGroupsJSON decodes pattern groups from JSON
func ParsePatternGroupsJSON(data []byte) ([]model.PatternGroup, error) {
	var pf patternFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse patterns json: %w", err)
	}
	return checkGroups(pf.Groups)
}

// LoadPatternGroups reads pattern groups from a YAML or JSON file, picking the
// decoder from the file extension and falling back to YAML then JSON.
func LoadPatternGroups(filename string) ([]model.PatternGroup, error) {
	if filename == "" {
		return nil, fmt.Errorf("patterns file path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParsePatternGroupsYAML(data)
	case ".json":
		return ParsePatternGroupsJSON(data)
	}

	if groups, err := ParsePatternGroupsYAML(data); err == nil {
		return groups, nil
	}
	return ParsePatternGroupsJSON(data)
}

func checkGroups(groups []model.PatternGroup) ([]model.PatternGroup, error) {
	total := 0
	for i, g := range groups {
		if strings.TrimSpace(g.Name) == "" {
			return nil, fmt.Errorf("pattern group %d has no name", i)
		}
		total += len(g.Patterns)
	}
	if total == 0 {
		return nil, ErrNoPatterns
	}
	return groups, nil
}
