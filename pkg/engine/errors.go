package engine

import "errors"

// ErrTemplateNotFound is returned when the configured loader cannot
// resolve a template name.
var ErrTemplateNotFound = errors.New("template not found")

// ErrTemplateSyntax is returned when template source fails to parse.
var ErrTemplateSyntax = errors.New("template syntax error")

// ErrUnknownFilter is returned when a template references a filter that
// is not registered and the environment runs with strict filters.
var ErrUnknownFilter = errors.New("unknown filter")

// ErrUndefinedVariable is returned when a render references a missing
// variable under the strict undefined policy.
var ErrUndefinedVariable = errors.New("undefined variable")

// ErrRender is returned for render failures that match no more specific
// classification.
var ErrRender = errors.New("render failed")

// ErrFilterExists is returned when registering a filter under a name
// that is already taken.
var ErrFilterExists = errors.New("filter already registered")
