package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikolalohinski/gonja/v2/exec"
)

// Template is a compiled template handle. A Template with no backing
// program (produced by warn/lax tolerance) renders to the empty string.
type Template struct {
	name string
	tpl  *exec.Template
	env  *Environment
}

// Name returns the identifier the template was compiled under.
func (t *Template) Name() string {
	return t.name
}

// Render executes the template with the given variables.
func (t *Template) Render(vars map[string]any) (string, error) {
	return t.RenderContext(context.Background(), vars)
}

// RenderContext is Render with cancellation support; the context is
// checked once before execution starts. The environment's globals are
// merged underneath the per-call variables.
func (t *Template) RenderContext(ctx context.Context, vars map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.tpl == nil {
		return "", nil
	}

	merged := make(map[string]any, len(t.env.Globals)+len(vars))
	for k, v := range t.env.Globals {
		merged[k] = v
	}
	for k, v := range vars {
		merged[k] = v
	}

	out, err := t.tpl.ExecuteToString(exec.NewContext(merged))
	if err != nil {
		return "", t.classify(err)
	}
	return out, nil
}

// classify maps gonja execution errors onto the engine's error taxonomy.
// Gonja reports a missing variable under strict-undefined as
// `Unable to evaluate name "x"` and a missing filter as
// `filter 'x' not found`; both are matched on message since gonja does
// not export typed errors for them.
func (t *Template) classify(err error) error {
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "filter") && strings.Contains(msg, "not found") {
		if !t.env.StrictFilters {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnknownFilter, err)
	}

	if t.env.Undefined == UndefinedStrict &&
		(strings.Contains(msg, "unable to evaluate") || strings.Contains(msg, "undefined")) {
		return fmt.Errorf("%w: %v", ErrUndefinedVariable, err)
	}

	return fmt.Errorf("%w: %v", ErrRender, err)
}
