package fsroute

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/route"
)

// restParam captures the remainder of a path under a _404 directory.
const restParam = "__rest"

// Option configures Build.
type Option func(*builder)

// WithCompileOptions passes options to every compiled pattern.
func WithCompileOptions(opts ...route.CompileOption) Option {
	return func(b *builder) {
		b.compile = append(b.compile, opts...)
	}
}

type builder struct {
	compile []route.CompileOption

	app        *App
	middleware map[string]*Middleware
	layouts    map[string]*Layout
	notFound   map[string]*NotFound
	errorPages map[string]*ErrorPage
	keys       map[string]parsedKey
}

// Build compiles a namespace into a route table. Keys are processed in
// lexicographic order, which is the declaration order used to break ties
// between equally specific routes.
func Build(ns Namespace, opts ...Option) (*Table, error) {
	b := &builder{
		middleware: make(map[string]*Middleware),
		layouts:    make(map[string]*Layout),
		notFound:   make(map[string]*NotFound),
		errorPages: make(map[string]*ErrorPage),
		keys:       make(map[string]parsedKey),
	}
	for _, opt := range opts {
		opt(b)
	}

	keys := slices.Sorted(maps.Keys(ns))

	var routeKeys []string
	for _, key := range keys {
		pk, err := parseKey(key)
		if err != nil {
			return nil, &SourceError{Source: key, Err: err}
		}
		if err := b.collect(key, pk, ns[key]); err != nil {
			return nil, &SourceError{Source: key, Err: err}
		}
		b.keys[key] = pk
		if pk.role == roleRoute {
			routeKeys = append(routeKeys, key)
		}
	}

	t := &Table{
		errors: make(map[string]*CompiledErrorPage),
		root:   b.middlewareChain(""),
	}

	for dir, ep := range b.errorPages {
		t.errors[dir] = &CompiledErrorPage{
			Handler: ep.Handler,
			Source:  joinKey(dir, "_500"),
			Dir:     dir,
			Layouts: b.layoutChain(dir, false),
			App:     b.appWrapper(false),
		}
	}

	seen := make(map[string]string)
	for _, key := range routeKeys {
		cr, err := b.compileRoute(key, ns[key].(*Route))
		if err != nil {
			return nil, &SourceError{Source: key, Err: err}
		}

		canonical := cr.Pattern.Canonical()
		if first, ok := seen[canonical]; ok {
			return nil, &ConflictError{Pattern: cr.Pattern.URL(), First: first, Second: key}
		}
		seen[canonical] = key

		cr.ErrorPage, _ = t.ErrorPage(cr.Dir)
		t.routes = append(t.routes, cr)
	}

	seenNotFound := make(map[string]string)
	for _, dir := range slices.Sorted(maps.Keys(b.notFound)) {
		cr, err := b.compileNotFound(dir, b.notFound[dir])
		if err != nil {
			return nil, &SourceError{Source: joinKey(dir, "_404"), Err: err}
		}

		canonical := cr.Pattern.Canonical()
		if first, ok := seenNotFound[canonical]; ok {
			return nil, &ConflictError{Pattern: cr.Pattern.URL(), First: first, Second: cr.Source}
		}
		seenNotFound[canonical] = cr.Source

		cr.ErrorPage, _ = t.ErrorPage(dir)
		t.notFound = append(t.notFound, cr)
	}

	bySpecificity := func(x, y *CompiledRoute) int {
		return y.score.Compare(x.score)
	}
	slices.SortStableFunc(t.routes, bySpecificity)
	slices.SortStableFunc(t.notFound, bySpecificity)

	return t, nil
}

func (b *builder) collect(key string, pk parsedKey, def Definition) error {
	if def == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}

	mismatch := func() error {
		return fmt.Errorf("%w: %s declared with %T", ErrDefinitionMismatch, pk.role, def)
	}

	switch pk.role {
	case roleRoute:
		r, ok := def.(*Route)
		if !ok {
			return mismatch()
		}
		if len(r.Handlers) == 0 {
			return fmt.Errorf("%w: route without handlers", ErrInvalidDefinition)
		}
		for method, h := range r.Handlers {
			if h == nil {
				return fmt.Errorf("%w: nil handler for %s", ErrInvalidDefinition, method)
			}
		}
	case roleMiddleware:
		m, ok := def.(*Middleware)
		if !ok {
			return mismatch()
		}
		for i, h := range m.Handlers {
			if h == nil {
				return fmt.Errorf("%w: nil middleware at index %d", ErrInvalidDefinition, i)
			}
		}
		b.middleware[pk.dir] = m
	case roleLayout:
		l, ok := def.(*Layout)
		if !ok {
			return mismatch()
		}
		if l.Render == nil {
			return fmt.Errorf("%w: layout without render function", ErrInvalidDefinition)
		}
		b.layouts[pk.dir] = l
	case roleApp:
		a, ok := def.(*App)
		if !ok {
			return mismatch()
		}
		if a.Render == nil {
			return fmt.Errorf("%w: app wrapper without render function", ErrInvalidDefinition)
		}
		b.app = a
	case roleNotFound:
		nf, ok := def.(*NotFound)
		if !ok {
			return mismatch()
		}
		if nf.Handler == nil {
			return fmt.Errorf("%w: not-found page without handler", ErrInvalidDefinition)
		}
		b.notFound[pk.dir] = nf
	case roleError:
		ep, ok := def.(*ErrorPage)
		if !ok {
			return mismatch()
		}
		if ep.Handler == nil {
			return fmt.Errorf("%w: error page without handler", ErrInvalidDefinition)
		}
		b.errorPages[pk.dir] = ep
	}
	return nil
}

func (b *builder) compileRoute(key string, r *Route) (*CompiledRoute, error) {
	pk := b.keys[key]

	raw := routePattern(pk)
	if o := r.Config.RouteOverride; o != "" {
		if strings.HasPrefix(o, "/") {
			raw = o
		} else {
			raw = strings.TrimSuffix(dirPattern(pk.dirSegments), "/") + "/" + o
		}
	}

	opts := slices.Clone(b.compile)
	if r.Config.RegexRank > 0 {
		opts = append(opts, route.WithRegexRank(r.Config.RegexRank))
	}
	p, err := route.Compile(raw, opts...)
	if err != nil {
		return nil, err
	}

	handlers := make(map[string]handler.HandlerFunc, len(r.Handlers))
	for method, h := range r.Handlers {
		handlers[strings.ToUpper(method)] = h
	}

	return &CompiledRoute{
		Pattern:    p,
		Handlers:   handlers,
		Config:     r.Config,
		Source:     key,
		Dir:        pk.dir,
		Middleware: b.middlewareChain(pk.dir),
		Layouts:    b.layoutChain(pk.dir, r.Config.SkipInheritedLayouts),
		App:        b.appWrapper(r.Config.SkipAppWrapper),
		score:      p.Score(),
	}, nil
}

func (b *builder) compileNotFound(dir string, nf *NotFound) (*CompiledRoute, error) {
	var segments []string
	if dir != "" {
		for _, d := range strings.Split(dir, "/") {
			seg, err := convertSegment(d)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}
	segments = append(segments, ":"+restParam+"*")

	p, err := route.Compile(dirPattern(segments), b.compile...)
	if err != nil {
		return nil, err
	}

	return &CompiledRoute{
		Pattern:    p,
		Handlers:   map[string]handler.HandlerFunc{"*": nf.Handler},
		Source:     joinKey(dir, "_404"),
		Dir:        dir,
		Middleware: b.middlewareChain(dir),
		Layouts:    b.layoutChain(dir, false),
		App:        b.appWrapper(false),
		NotFound:   true,
		score:      p.Score(),
	}, nil
}

// middlewareChain concatenates middleware from the root down to dir.
func (b *builder) middlewareChain(dir string) []handler.Middleware {
	var chain []handler.Middleware
	dirs := ancestors(dir)
	for i := len(dirs) - 1; i >= 0; i-- {
		if m, ok := b.middleware[dirs[i]]; ok {
			chain = append(chain, m.Handlers...)
		}
	}
	return chain
}

// layoutChain collects layouts from dir up to the root, innermost first. A layout
// that skips inherited layouts ends the chain.
func (b *builder) layoutChain(dir string, skip bool) []handler.LayoutFunc {
	if skip {
		return nil
	}
	var chain []handler.LayoutFunc
	for _, d := range ancestors(dir) {
		l, ok := b.layouts[d]
		if !ok {
			continue
		}
		chain = append(chain, l.Render)
		if l.SkipInheritedLayouts {
			break
		}
	}
	return chain
}

func (b *builder) appWrapper(skip bool) handler.LayoutFunc {
	if skip || b.app == nil {
		return nil
	}
	return b.app.Render
}

func routePattern(pk parsedKey) string {
	segments := pk.dirSegments
	if pk.leaf != "" {
		segments = append(slices.Clone(segments), pk.leaf)
	}
	return dirPattern(segments)
}

func joinKey(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
