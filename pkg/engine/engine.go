// Package engine wraps the gonja template engine behind the small surface
// the render adapter needs: mutable configuration fields, loader-backed
// compilation with LRU caching, and a stable error taxonomy.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nikolalohinski/gonja/v2/builtins"
	"github.com/nikolalohinski/gonja/v2/config"
	"github.com/nikolalohinski/gonja/v2/exec"

	"github.com/tmalden/vellum/pkg/loaders"
)

// Tolerance controls what happens when template source fails to compile.
type Tolerance string

const (
	// ToleranceStrict propagates compile errors to the caller.
	ToleranceStrict Tolerance = "strict"
	// ToleranceWarn logs the compile error and yields an empty template.
	ToleranceWarn Tolerance = "warn"
	// ToleranceLax silently yields an empty template.
	ToleranceLax Tolerance = "lax"
)

// Undefined selects how renders treat variables with no binding.
type Undefined string

const (
	// UndefinedSilent renders missing variables as empty output.
	UndefinedSilent Undefined = "silent"
	// UndefinedStrict fails the render with ErrUndefinedVariable.
	UndefinedStrict Undefined = "strict"
)

// Comment delimiters cannot be switched off in the lexer, so disabling
// comments points them at a byte sequence that never occurs in source.
const noCommentDelimiter = "\x00"

// DefaultCacheSize is the capacity of the named-template cache.
const DefaultCacheSize = 300

// Environment owns compilation, caching and rendering of templates.
//
// The exported fields are mutable so an adapter can copy configuration
// onto them after construction. They are read when a template is
// compiled; mutating them concurrently with renders is not synchronized
// and is only safe during single-threaded startup.
type Environment struct {
	BlockStartString    string
	BlockEndString      string
	VariableStartString string
	VariableEndString   string
	CommentStartString  string
	CommentEndString    string
	Comments            bool
	Tolerance           Tolerance
	Undefined           Undefined
	StrictFilters       bool
	AutoEscape          bool
	AutoReload          bool
	Globals             map[string]any
	Loader              loaders.Loader

	logger  *slog.Logger
	filters *exec.FilterSet

	mu              sync.Mutex
	cache           *lru.Cache[string, *cachedTemplate]
	sourceCache     *lru.Cache[string, *Template]
	cacheSize       int
	sourceCacheSize int
}

type cachedTemplate struct {
	tpl      *Template
	uptodate func() bool
}

// Option is a functional option for New.
type Option func(*Environment)

// WithLoader sets the template loader.
func WithLoader(l loaders.Loader) Option {
	return func(e *Environment) {
		e.Loader = l
	}
}

// WithGlobals sets variables merged underneath every render's context.
func WithGlobals(globals map[string]any) Option {
	return func(e *Environment) {
		e.Globals = globals
	}
}

// WithBlockDelimiters sets the statement tag delimiters (default "{%", "%}").
func WithBlockDelimiters(start, end string) Option {
	return func(e *Environment) {
		e.BlockStartString = start
		e.BlockEndString = end
	}
}

// WithVariableDelimiters sets the output delimiters (default "{{", "}}").
func WithVariableDelimiters(start, end string) Option {
	return func(e *Environment) {
		e.VariableStartString = start
		e.VariableEndString = end
	}
}

// WithCommentDelimiters sets the comment delimiters (default "{#", "#}").
// They only take effect when comments are enabled via WithComments.
func WithCommentDelimiters(start, end string) Option {
	return func(e *Environment) {
		e.CommentStartString = start
		e.CommentEndString = end
	}
}

// WithComments enables or disables template comments (default disabled).
func WithComments(enabled bool) Option {
	return func(e *Environment) {
		e.Comments = enabled
	}
}

// WithTolerance sets the compile error tolerance (default ToleranceStrict).
func WithTolerance(mode Tolerance) Option {
	return func(e *Environment) {
		e.Tolerance = mode
	}
}

// WithUndefined sets the missing-variable policy (default UndefinedSilent).
func WithUndefined(policy Undefined) Option {
	return func(e *Environment) {
		e.Undefined = policy
	}
}

// WithStrictFilters controls whether references to unknown filters fail
// compilation (default true).
func WithStrictFilters(strict bool) Option {
	return func(e *Environment) {
		e.StrictFilters = strict
	}
}

// WithAutoEscape controls HTML-escaping of rendered values (default true).
func WithAutoEscape(enabled bool) Option {
	return func(e *Environment) {
		e.AutoEscape = enabled
	}
}

// WithAutoReload controls revalidation of cached templates against the
// loader (default true).
func WithAutoReload(enabled bool) Option {
	return func(e *Environment) {
		e.AutoReload = enabled
	}
}

// WithCacheSize sets the capacity of the named-template cache. Values
// below 1 disable caching.
func WithCacheSize(size int) Option {
	return func(e *Environment) {
		e.cacheSize = size
	}
}

// WithSourceCacheSize sets the capacity of the inline-source cache
// (default 0, disabled).
func WithSourceCacheSize(size int) Option {
	return func(e *Environment) {
		e.sourceCacheSize = size
	}
}

// WithLogger sets a structured logger used by warn-tolerance compiles.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Environment) {
		e.logger = logger
	}
}

// WithFilter registers a custom filter at construction time.
func WithFilter(name string, fn FilterFunc) Option {
	return func(e *Environment) {
		// At construction time the last registration wins; post-construction
		// conflicts surface via RegisterFilter's error instead.
		e.setFilter(name, wrapFilter(name, fn))
	}
}

// New creates an Environment with gonja-compatible defaults.
func New(opts ...Option) *Environment {
	e := &Environment{
		BlockStartString:    "{%",
		BlockEndString:      "%}",
		VariableStartString: "{{",
		VariableEndString:   "}}",
		CommentStartString:  "{#",
		CommentEndString:    "#}",
		Comments:            false,
		Tolerance:           ToleranceStrict,
		Undefined:           UndefinedSilent,
		StrictFilters:       true,
		AutoEscape:          true,
		AutoReload:          true,
		logger:              slog.New(slog.NewJSONHandler(io.Discard, nil)),
		filters:             defaultFilters(),
		cacheSize:           DefaultCacheSize,
		sourceCacheSize:     0,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.Loader == nil {
		e.Loader = loaders.NewMapLoader(nil)
	}

	e.cache = newCache[*cachedTemplate](e.cacheSize)
	e.sourceCache = newCache[*Template](e.sourceCacheSize)

	return e
}

func newCache[V any](size int) *lru.Cache[string, V] {
	if size < 1 {
		return nil
	}
	cache, _ := lru.New[string, V](size)
	return cache
}

// GetTemplate compiles the named template through the configured loader.
func (e *Environment) GetTemplate(name string) (*Template, error) {
	return e.GetTemplateContext(context.Background(), name)
}

// GetTemplateContext is GetTemplate with cancellation support. The
// context is checked before the loader is consulted and again before
// compilation.
func (e *Environment) GetTemplateContext(ctx context.Context, name string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cached, ok := e.lookupNamed(name); ok {
		return cached, nil
	}

	source, err := e.Loader.Load(ctx, name)
	if err != nil {
		if errors.Is(err, loaders.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl, err := e.compile(name, source.Contents)
	if err != nil {
		return e.tolerate(name, err)
	}

	e.mu.Lock()
	if e.cache != nil {
		e.cache.Add(name, &cachedTemplate{tpl: tpl, uptodate: source.Uptodate})
	}
	e.mu.Unlock()

	return tpl, nil
}

func (e *Environment) lookupNamed(name string) (*Template, bool) {
	e.mu.Lock()
	cache := e.cache
	e.mu.Unlock()
	if cache == nil {
		return nil, false
	}

	entry, ok := cache.Get(name)
	if !ok {
		return nil, false
	}
	if e.AutoReload && entry.uptodate != nil && !entry.uptodate() {
		cache.Remove(name)
		return nil, false
	}
	return entry.tpl, true
}

// FromString compiles inline template source.
func (e *Environment) FromString(source string) (*Template, error) {
	return e.FromStringContext(context.Background(), source)
}

// FromStringContext is FromString with cancellation support. Compiled
// results are cached only when the source cache is enabled, keyed by a
// hash of the source text.
func (e *Environment) FromStringContext(ctx context.Context, source string) (*Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := sourceKey(source)

	e.mu.Lock()
	sourceCache := e.sourceCache
	e.mu.Unlock()

	if sourceCache != nil {
		if tpl, ok := sourceCache.Get(key); ok {
			return tpl, nil
		}
	}

	tpl, err := e.compile("string:"+key[:12], source)
	if err != nil {
		return e.tolerate("<string>", err)
	}

	if sourceCache != nil {
		sourceCache.Add(key, tpl)
	}
	return tpl, nil
}

// SetSourceCacheSize resizes the inline-source cache, dropping any cached
// entries. Values below 1 disable the cache.
func (e *Environment) SetSourceCacheSize(size int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sourceCacheSize = size
	e.sourceCache = newCache[*Template](size)
}

// SourceCacheSize returns the configured inline-source cache capacity.
func (e *Environment) SourceCacheSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sourceCacheSize
}

// ClearCache drops every cached template, named and inline.
func (e *Environment) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = newCache[*cachedTemplate](e.cacheSize)
	e.sourceCache = newCache[*Template](e.sourceCacheSize)
}

func (e *Environment) compile(identifier, source string) (*Template, error) {
	if missing := e.missingFilters(source); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, strings.Join(missing, ", "))
	}

	bridge := newBridge(e.Loader, identifier, source)

	tpl, err := exec.NewTemplate(identifier, e.buildConfig(), bridge, e.execEnvironment())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}

	return &Template{name: identifier, tpl: tpl, env: e}, nil
}

// tolerate applies the environment's error tolerance to a compile error.
func (e *Environment) tolerate(name string, err error) (*Template, error) {
	if !e.StrictFilters && errors.Is(err, ErrUnknownFilter) {
		return &Template{name: name, env: e}, nil
	}

	switch e.Tolerance {
	case ToleranceWarn:
		e.logger.Warn("template compile failed", "template", name, "error", err)
		return &Template{name: name, env: e}, nil
	case ToleranceLax:
		return &Template{name: name, env: e}, nil
	default:
		return nil, err
	}
}

func (e *Environment) buildConfig() *config.Config {
	cfg := config.New()
	cfg.BlockStartString = e.BlockStartString
	cfg.BlockEndString = e.BlockEndString
	cfg.VariableStartString = e.VariableStartString
	cfg.VariableEndString = e.VariableEndString
	cfg.AutoEscape = e.AutoEscape
	cfg.StrictUndefined = e.Undefined == UndefinedStrict

	if e.Comments && e.CommentStartString != "" && e.CommentEndString != "" {
		cfg.CommentStartString = e.CommentStartString
		cfg.CommentEndString = e.CommentEndString
	} else {
		cfg.CommentStartString = noCommentDelimiter
		cfg.CommentEndString = noCommentDelimiter
	}

	return cfg
}

func (e *Environment) execEnvironment() *exec.Environment {
	return &exec.Environment{
		Context:           exec.EmptyContext().Update(builtins.GlobalFunctions),
		Filters:           e.filters,
		Tests:             builtins.Tests,
		ControlStructures: builtins.ControlStructures,
		Methods:           builtins.Methods,
	}
}

// missingFilters scans source for filter references that are not
// registered. Gonja resolves filter names during execution rather than
// parsing, so names are checked up front to surface them before the
// first render. The scan is lexical: identifiers following a pipe inside
// an expression or statement region, skipping string literals. Filters
// referenced only from included templates are still caught at render
// time by the template's error classification.
func (e *Environment) missingFilters(source string) []string {
	var missing []string
	seen := make(map[string]bool)

	regions := delimitedRegions(source, e.VariableStartString, e.VariableEndString)
	regions = append(regions, delimitedRegions(source, e.BlockStartString, e.BlockEndString)...)

	for _, region := range regions {
		for _, name := range filterNames(region) {
			if seen[name] || e.filters.Exists(name) {
				continue
			}
			seen[name] = true
			missing = append(missing, name)
		}
	}
	return missing
}

func delimitedRegions(source, start, end string) []string {
	var regions []string
	for {
		i := strings.Index(source, start)
		if i < 0 {
			return regions
		}
		rest := source[i+len(start):]
		j := strings.Index(rest, end)
		if j < 0 {
			return regions
		}
		regions = append(regions, rest[:j])
		source = rest[j+len(end):]
	}
}

func filterNames(expr string) []string {
	var names []string
	var quote byte
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '|':
			j := i + 1
			for j < len(expr) && (expr[j] == ' ' || expr[j] == '\t') {
				j++
			}
			k := j
			for k < len(expr) && isIdentByte(expr[k]) {
				k++
			}
			if k > j {
				names = append(names, expr[j:k])
			}
			i = k - 1
		}
	}
	return names
}

func isIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func sourceKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
