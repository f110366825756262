package engine

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/exec"
)

// FilterFunc is the simplified signature custom filters are written
// against. The first argument is the piped-in value, followed by any
// positional filter arguments. Returning a *exec.Value passes it through
// to the engine untouched, which is how a filter marks output as safe
// from autoescaping.
type FilterFunc func(in any, args ...any) (any, error)

// RegisterFilter makes a custom filter available to every template
// compiled after the call. It fails with ErrFilterExists when the name
// is already taken, builtins included.
func (e *Environment) RegisterFilter(name string, fn FilterFunc) error {
	if e.filters.Exists(name) {
		return fmt.Errorf("%w: %s", ErrFilterExists, name)
	}
	e.setFilter(name, wrapFilter(name, fn))
	return nil
}

func (e *Environment) setFilter(name string, fn exec.FilterFunction) {
	if e.filters.Exists(name) {
		e.filters.Replace(name, fn)
		return
	}
	e.filters.Register(name, fn)
}

// wrapFilter converts a FilterFunc into the evaluator-level signature
// gonja expects.
func wrapFilter(name string, fn FilterFunc) exec.FilterFunction {
	return func(ev *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		args := make([]any, 0, len(params.Args))
		for _, arg := range params.Args {
			args = append(args, arg.Interface())
		}

		out, err := fn(in.Interface(), args...)
		if err != nil {
			return exec.AsValue(fmt.Errorf("filter %s: %w", name, err))
		}
		if value, ok := out.(*exec.Value); ok {
			return value
		}
		return exec.AsValue(out)
	}
}

var ugcPolicy = bluemonday.UGCPolicy()

// sanitizeHTML is the built-in "sanitize" filter: it strips unsafe HTML
// from the input and marks the result safe, so sanitized markup survives
// autoescaping.
func sanitizeHTML(in any, _ ...any) (any, error) {
	s, ok := in.(string)
	if !ok {
		s = fmt.Sprint(in)
	}
	return exec.AsSafeValue(ugcPolicy.Sanitize(s)), nil
}

func defaultFilters() *exec.FilterSet {
	return exec.NewFilterSet(map[string]exec.FilterFunction{
		"sanitize": wrapFilter("sanitize", sanitizeHTML),
	}).Update(builtins.Filters)
}
