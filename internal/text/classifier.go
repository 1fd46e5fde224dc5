package text

import (
	"fmt"
	"regexp"

	"threat-sentinel/internal/model"
)

type compiledGroup struct {
	name     string
	patterns []*regexp.Regexp
}

// Classifier flags sentences that read like instructions. It holds only
// compiled patterns and is safe for concurrent use.
type Classifier struct {
	groups []compiledGroup
}

// NewClassifier compiles every pattern case-insensitively. A malformed
// pattern or an empty set is a configuration error.
func NewClassifier(groups []model.PatternGroup) (*Classifier, error) {
	if _, err := checkGroups(groups); err != nil {
		return nil, err
	}

	c := &Classifier{groups: make([]compiledGroup, 0, len(groups))}
	for _, g := range groups {
		cg := compiledGroup{name: g.Name, patterns: make([]*regexp.Regexp, 0, len(g.Patterns))}
		for _, p := range g.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("pattern group %q: compile %q: %w", g.Name, p, err)
			}
			cg.patterns = append(cg.patterns, re)
		}
		c.groups = append(c.groups, cg)
	}
	return c, nil
}

// NewDefaultClassifier builds a classifier over the embedded pattern groups
func NewDefaultClassifier() (*Classifier, error) {
	groups, err := DefaultPatternGroups()
	if err != nil {
		return nil, err
	}
	return NewClassifier(groups)
}

// Classify reports whether the unit matches any pattern group
func (c *Classifier) Classify(unit string) bool {
	_, ok := c.Match(unit)
	return ok
}

// Match returns the first group, in declared order, that matches the unit
func (c *Classifier) Match(unit string) (string, bool) {
	for _, g := range c.groups {
		for _, re := range g.patterns {
			if re.MatchString(unit) {
				return g.name, true
			}
		}
	}
	return "", false
}

// Groups returns the group names in evaluation order
func (c *Classifier) Groups() []string {
	names := make([]string, len(c.groups))
	for i, g := range c.groups {
		names[i] = g.name
	}
	return names
}
