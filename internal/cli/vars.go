package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseVars builds the render variables from an optional YAML data file
// and --var key=value pairs. Pair values are parsed as YAML scalars so
// numbers and booleans come through typed; pairs override file entries.
func ParseVars(dataFile string, pairs []string) (map[string]any, error) {
	vars := make(map[string]any)

	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &vars); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", dataFile, err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}

		var parsed any
		if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		vars[key] = parsed
	}

	return vars, nil
}
