package fsroute_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fresco/core/fsroute"
	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/route"
)

func get(name string) *fsroute.Route {
	return &fsroute.Route{Handlers: map[string]handler.HandlerFunc{
		http.MethodGet: func(ctx *handler.Context) (handler.Response, error) {
			ctx.Set("handler", name)
			return nil, nil
		},
	}}
}

func mark(name string) handler.Middleware {
	return func(ctx *handler.Context) (handler.Response, error) {
		prev, _ := handler.StateValue[string](ctx, "mw")
		ctx.Set("mw", prev+name)
		return ctx.Next()
	}
}

func wrap(name string) handler.LayoutFunc {
	return func(_ *handler.Context, inner templ.Component) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, "<"+name+">"); err != nil {
				return err
			}
			if err := inner.Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, "</"+name+">")
			return err
		})
	}
}

func TestBuildPatterns(t *testing.T) {
	t.Parallel()

	table, err := fsroute.Build(fsroute.Namespace{
		"index":               get("home"),
		"about":               get("about"),
		"blog/index":          get("blog"),
		"blog/[slug]":         get("post"),
		"docs/[...path]":      get("docs"),
		"shop/[[page]]":       get("shop"),
		"(marketing)/pricing": get("pricing"),
		"[lang]/[slug]":       get("localized"),
	})
	require.NoError(t, err)

	tests := []struct {
		path    string
		source  string
		params  route.Params
		matched bool
	}{
		{path: "/", source: "index", params: route.Params{}, matched: true},
		{path: "/about", source: "about", params: route.Params{}, matched: true},
		{path: "/blog", source: "blog/index", params: route.Params{}, matched: true},
		{path: "/blog/hello%20world", source: "blog/[slug]", params: route.Params{"slug": "hello world"}, matched: true},
		{path: "/docs", source: "docs/[...path]", params: route.Params{"path": ""}, matched: true},
		{path: "/docs/a/b/c", source: "docs/[...path]", params: route.Params{"path": "a/b/c"}, matched: true},
		{path: "/shop", source: "shop/[[page]]", params: route.Params{}, matched: true},
		{path: "/shop/2", source: "shop/[[page]]", params: route.Params{"page": "2"}, matched: true},
		{path: "/pricing", source: "(marketing)/pricing", params: route.Params{}, matched: true},
		{path: "/en/intro", source: "[lang]/[slug]", params: route.Params{"lang": "en", "slug": "intro"}, matched: true},
		{path: "/a/b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			r, params, ok := table.Match(tt.path)
			require.Equal(t, tt.matched, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.source, r.Source)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestBuildSpecificity(t *testing.T) {
	t.Parallel()

	table, err := fsroute.Build(fsroute.Namespace{
		"blog/[...rest]": get("catchall"),
		"blog/[slug]":    get("param"),
		"blog/new":       get("literal"),
		"[a]/[b]":        get("params"),
	})
	require.NoError(t, err)

	r, _, ok := table.Match("/blog/new")
	require.True(t, ok)
	assert.Equal(t, "blog/new", r.Source)

	r, _, ok = table.Match("/blog/other")
	require.True(t, ok)
	assert.Equal(t, "blog/[slug]", r.Source)

	r, _, ok = table.Match("/blog/a/b")
	require.True(t, ok)
	assert.Equal(t, "blog/[...rest]", r.Source)

	var sources []string
	for _, info := range table.Routes() {
		sources = append(sources, info.Source)
	}
	assert.Equal(t, []string{"blog/new", "blog/[slug]", "[a]/[b]", "blog/[...rest]"}, sources)
}

func TestBuildDeclarationOrderTieBreak(t *testing.T) {
	t.Parallel()

	table, err := fsroute.Build(fsroute.Namespace{
		"b/[id]":   get("b"),
		"[x]/item": get("x"),
		"a/[id]":   get("a"),
	})
	require.NoError(t, err)

	var sources []string
	for _, info := range table.Routes() {
		sources = append(sources, info.Source)
	}
	assert.Equal(t, []string{"a/[id]", "b/[id]", "[x]/item"}, sources)
}

func TestBuildConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ns     fsroute.Namespace
		first  string
		second string
	}{
		{
			name:   "groups resolve to the same url",
			ns:     fsroute.Namespace{"(a)/pricing": get("a"), "(b)/pricing": get("b")},
			first:  "(a)/pricing",
			second: "(b)/pricing",
		},
		{
			name:   "parameter names differ",
			ns:     fsroute.Namespace{"blog/[id]": get("a"), "blog/[slug]": get("b")},
			first:  "blog/[id]",
			second: "blog/[slug]",
		},
		{
			name:   "index and override",
			ns:     fsroute.Namespace{"about": get("a"), "info": &fsroute.Route{Handlers: get("b").Handlers, Config: fsroute.RouteConfig{RouteOverride: "/about"}}},
			first:  "about",
			second: "info",
		},
		{
			name: "group not-found page shadows the parent one",
			ns: fsroute.Namespace{
				"_404":        &fsroute.NotFound{Handler: get("nf").Handlers[http.MethodGet]},
				"(shop)/_404": &fsroute.NotFound{Handler: get("shop").Handlers[http.MethodGet]},
			},
			first:  "_404",
			second: "(shop)/_404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := fsroute.Build(tt.ns)
			require.ErrorIs(t, err, fsroute.ErrConflict)

			var conflict *fsroute.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.first, conflict.First)
			assert.Equal(t, tt.second, conflict.Second)
			assert.Contains(t, err.Error(), tt.first)
			assert.Contains(t, err.Error(), tt.second)
		})
	}
}

func TestBuildRouteOverride(t *testing.T) {
	t.Parallel()

	table, err := fsroute.Build(fsroute.Namespace{
		"api/users": &fsroute.Route{Handlers: get("users").Handlers, Config: fsroute.RouteConfig{RouteOverride: ":id(\\d+)", RegexRank: route.RankLiteral}},
		"legacy":    &fsroute.Route{Handlers: get("legacy").Handlers, Config: fsroute.RouteConfig{RouteOverride: "/old/:path+"}},
		"api/[any]": get("any"),
	})
	require.NoError(t, err)

	r, params, ok := table.Match("/api/42")
	require.True(t, ok)
	assert.Equal(t, "api/users", r.Source)
	assert.Equal(t, "42", params.Get("id"))

	r, _, ok = table.Match("/api/abc")
	require.True(t, ok)
	assert.Equal(t, "api/[any]", r.Source)

	r, params, ok = table.Match("/old/x/y")
	require.True(t, ok)
	assert.Equal(t, "legacy", r.Source)
	assert.Equal(t, "x/y", params.Get("path"))

	_, _, ok = table.Match("/legacy")
	assert.False(t, ok)
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ns     fsroute.Namespace
		source string
		target error
	}{
		{name: "unknown special", ns: fsroute.Namespace{"_foo": get("x")}, source: "_foo", target: fsroute.ErrUnknownSpecial},
		{name: "app below root", ns: fsroute.Namespace{"admin/_app": &fsroute.App{Render: wrap("app")}}, source: "admin/_app", target: fsroute.ErrAppNotAtRoot},
		{name: "layout declared as route", ns: fsroute.Namespace{"_layout": get("x")}, source: "_layout", target: fsroute.ErrDefinitionMismatch},
		{name: "route declared as layout", ns: fsroute.Namespace{"about": &fsroute.Layout{Render: wrap("l")}}, source: "about", target: fsroute.ErrDefinitionMismatch},
		{name: "nil definition", ns: fsroute.Namespace{"about": nil}, source: "about", target: fsroute.ErrInvalidDefinition},
		{name: "no handlers", ns: fsroute.Namespace{"about": &fsroute.Route{}}, source: "about", target: fsroute.ErrInvalidDefinition},
		{name: "malformed bracket", ns: fsroute.Namespace{"blog/[slug": get("x")}, source: "blog/[slug", target: fsroute.ErrInvalidKey},
		{name: "catch-all directory", ns: fsroute.Namespace{"[...all]/edit": get("x")}, source: "[...all]/edit", target: route.ErrCatchAllPosition},
		{name: "bad override regexp", ns: fsroute.Namespace{"x": &fsroute.Route{Handlers: get("x").Handlers, Config: fsroute.RouteConfig{RouteOverride: "/:id([)"}}}, source: "x", target: route.ErrInvalidRegexp},
		{name: "group as file", ns: fsroute.Namespace{"(group)": get("x")}, source: "(group)", target: fsroute.ErrInvalidKey},
		{name: "leading slash", ns: fsroute.Namespace{"/about": get("x")}, source: "/about", target: fsroute.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := fsroute.Build(tt.ns)
			require.ErrorIs(t, err, tt.target)

			var srcErr *fsroute.SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, tt.source, srcErr.Source)
		})
	}
}

func TestBuildMiddlewareChain(t *testing.T) {
	t.Parallel()

	table, err := fsroute.Build(fsroute.Namespace{
		"_middleware":              &fsroute.Middleware{Handlers: []handler.Middleware{mark("1"), mark("a")}},
		"admin/_middleware":        &fsroute.Middleware{Handlers: []handler.Middleware{mark("2")}},
		"admin/(auth)/_middleware": &fsroute.Middleware{Handlers: []handler.Middleware{mark("3")}},
		"admin/(auth)/users/[id]":  get("user"),
		"admin/index":              get("admin"),
		"(public)/_middleware":     &fsroute.Middleware{Handlers: []handler.Middleware{mark("p")}},
		"(public)/about":           get("about"),
	})
	require.NoError(t, err)

	run := func(path string) string {
		r, params, ok := table.Match(path)
		require.True(t, ok, path)
		h, ok := r.Handler(http.MethodGet)
		require.True(t, ok)

		ctx := handler.NewContext(httptest.NewRequest(http.MethodGet, path, nil),
			handler.WithParams(params),
			handler.WithChain(r.Middleware, h),
		)
		_, err := ctx.Next()
		require.NoError(t, err)
		got, _ := handler.StateValue[string](ctx, "mw")
		return got
	}

	assert.Equal(t, "1a23", run("/admin/users/7"))
	assert.Equal(t, "1a2", run("/admin"))
	assert.Equal(t, "1ap", run("/about"))
	assert.Len(t, table.RootMiddleware(), 2)
}

func renderLayouts(t *testing.T, r *fsroute.CompiledRoute) string {
	t.Helper()

	ctx := handler.NewContext(httptest.NewRequest(http.MethodGet, "/", nil))
	var c templ.Component = templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "page")
		return err
	})
	for _, l := range r.Layouts {
		c = l(ctx, c)
	}
	if r.App != nil {
		c = r.App(ctx, c)
	}

	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestBuildLayoutChain(t *testing.T) {
	t.Parallel()

	ns := fsroute.Namespace{
		"_app":           &fsroute.App{Render: wrap("html")},
		"_layout":        &fsroute.Layout{Render: wrap("root")},
		"a/_layout":      &fsroute.Layout{Render: wrap("a")},
		"a/b/_layout":    &fsroute.Layout{Render: wrap("b")},
		"a/b/c/page":     get("page"),
		"a/b/c/bare":     &fsroute.Route{Handlers: get("bare").Handlers, Config: fsroute.RouteConfig{SkipInheritedLayouts: true}},
		"a/b/c/raw":      &fsroute.Route{Handlers: get("raw").Handlers, Config: fsroute.RouteConfig{SkipInheritedLayouts: true, SkipAppWrapper: true}},
		"x/_layout":      &fsroute.Layout{Render: wrap("x"), SkipInheritedLayouts: true},
		"x/page":         get("x"),
		"(shop)/_layout": &fsroute.Layout{Render: wrap("shop")},
		"(shop)/cart":    get("cart"),
	}
	table, err := fsroute.Build(ns)
	require.NoError(t, err)

	match := func(path string) *fsroute.CompiledRoute {
		r, _, ok := table.Match(path)
		require.True(t, ok, path)
		return r
	}

	assert.Equal(t, "<html><root><a><b>page</b></a></root></html>", renderLayouts(t, match("/a/b/c/page")))
	assert.Equal(t, "<html>page</html>", renderLayouts(t, match("/a/b/c/bare")))
	assert.Equal(t, "page", renderLayouts(t, match("/a/b/c/raw")))
	assert.Equal(t, "<html><x>page</x></html>", renderLayouts(t, match("/x/page")))
	assert.Equal(t, "<html><root><shop>page</shop></root></html>", renderLayouts(t, match("/cart")))
}

func TestBuildNotFoundAndErrorPages(t *testing.T) {
	t.Parallel()

	notFound := func(ctx *handler.Context) (handler.Response, error) { return nil, nil }
	errPage := func(ctx *handler.Context, err error) (handler.Response, error) { return nil, err }

	table, err := fsroute.Build(fsroute.Namespace{
		"_404":              &fsroute.NotFound{Handler: notFound},
		"blog/_404":         &fsroute.NotFound{Handler: notFound},
		"blog/[slug]/_404":  &fsroute.NotFound{Handler: notFound},
		"_500":              &fsroute.ErrorPage{Handler: errPage},
		"admin/_500":        &fsroute.ErrorPage{Handler: errPage},
		"admin/users/index": get("users"),
		"blog/[slug]":       get("post"),
	})
	require.NoError(t, err)

	tests := []struct {
		path   string
		source string
	}{
		{path: "/missing", source: "_404"},
		{path: "/blog", source: "blog/_404"},
		{path: "/blogs", source: "_404"},
		{path: "/blog/x/comments", source: "blog/[slug]/_404"},
	}
	for _, tt := range tests {
		r, ok := table.NotFound(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.source, r.Source, tt.path)
		assert.True(t, r.NotFound)
	}

	users, _, ok := table.Match("/admin/users")
	require.True(t, ok)
	require.NotNil(t, users.ErrorPage)
	assert.Equal(t, "admin/_500", users.ErrorPage.Source)

	post, _, ok := table.Match("/blog/x")
	require.True(t, ok)
	require.NotNil(t, post.ErrorPage)
	assert.Equal(t, "_500", post.ErrorPage.Source)

	ep, ok := table.ErrorPage("admin/users")
	require.True(t, ok)
	assert.Equal(t, "admin/_500", ep.Source)
}

func TestCompiledRouteMethods(t *testing.T) {
	t.Parallel()

	noop := func(ctx *handler.Context) (handler.Response, error) { return nil, nil }
	table, err := fsroute.Build(fsroute.Namespace{
		"form": &fsroute.Route{Handlers: map[string]handler.HandlerFunc{"get": noop, "POST": noop}},
		"any":  &fsroute.Route{Handlers: map[string]handler.HandlerFunc{"*": noop}},
	})
	require.NoError(t, err)

	form, _, ok := table.Match("/form")
	require.True(t, ok)
	assert.Equal(t, []string{"GET", "HEAD", "POST"}, form.Methods())

	_, ok = form.Handler(http.MethodHead)
	assert.True(t, ok)
	_, ok = form.Handler(http.MethodDelete)
	assert.False(t, ok)

	anyRoute, _, ok := table.Match("/any")
	require.True(t, ok)
	_, ok = anyRoute.Handler(http.MethodPatch)
	assert.True(t, ok)

	assert.Equal(t, 2, table.Len())
	assert.Contains(t, table.String(), "GET,HEAD,POST\t/form\tform")
}
