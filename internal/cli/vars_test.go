package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVars_PairsOnly(t *testing.T) {
	vars, err := ParseVars("", []string{"name=World", "count=3", "draft=true"})
	require.NoError(t, err)

	assert.Equal(t, "World", vars["name"])
	assert.Equal(t, 3, vars["count"])
	assert.Equal(t, true, vars["draft"])
}

func TestParseVars_DataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: World\nitems:\n  - a\n  - b\n"), 0o644))

	vars, err := ParseVars(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "World", vars["name"])
	assert.Equal(t, []any{"a", "b"}, vars["items"])
}

func TestParseVars_PairOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file\n"), 0o644))

	vars, err := ParseVars(path, []string{"name=flag"})
	require.NoError(t, err)

	assert.Equal(t, "flag", vars["name"])
}

func TestParseVars_Invalid(t *testing.T) {
	_, err := ParseVars("", []string{"no-equals"})
	assert.Error(t, err)

	_, err = ParseVars("", []string{"=value"})
	assert.Error(t, err)

	_, err = ParseVars("missing.yaml", nil)
	assert.Error(t, err)
}
