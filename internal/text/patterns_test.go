package text

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatternGroups(t *testing.T) {
	groups, err := DefaultPatternGroups()
	require.NoError(t, err)
	require.Len(t, groups, 4)

	for _, g := range groups {
		assert.NotEmpty(t, g.Patterns, g.Name)
	}
}

func TestLoadPatternGroups(t *testing.T) {
	dir := t.TempDir()

	yamlFile := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("groups:\n  - name: stop\n    patterns: ['\\bstop\\b']\n"), 0644))

	jsonFile := filepath.Join(dir, "patterns.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"groups":[{"name":"go","patterns":["\\bgo\\b"]}]}`), 0644))

	noExt := filepath.Join(dir, "patterns")
	require.NoError(t, os.WriteFile(noExt, []byte(`{"groups":[{"name":"wait","patterns":["\\bwait\\b"]}]}`), 0644))

	groups, err := LoadPatternGroups(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, "stop", groups[0].Name)

	groups, err = LoadPatternGroups(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, "go", groups[0].Name)

	groups, err = LoadPatternGroups(noExt)
	require.NoError(t, err)
	assert.Equal(t, "wait", groups[0].Name)
}

func TestLoadPatternGroupsErrors(t *testing.T) {
	_, err := LoadPatternGroups("")
	assert.Error(t, err)

	_, err = LoadPatternGroups(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("groups: []\n"), 0644))
	_, err = LoadPatternGroups(empty)
	assert.ErrorIs(t, err, ErrNoPatterns)
}
