package route_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fresco/core/route"
)

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		err     error
	}{
		{"missing leading slash", "users", route.ErrInvalidPattern},
		{"empty", "", route.ErrInvalidPattern},
		{"empty segment", "/a//b", route.ErrInvalidPattern},
		{"nameless param", "/:", route.ErrInvalidPattern},
		{"malformed param", "/:id!", route.ErrInvalidPattern},
		{"catch-all not last", "/:rest*/edit", route.ErrCatchAllPosition},
		{"duplicate param", "/:id/:id", route.ErrDuplicateParam},
		{"bad regexp", "/:id([0-9)", route.ErrInvalidRegexp},
		{"malformed group", "/(x", route.ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := route.Compile(tt.pattern)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		ok      bool
		params  route.Params
	}{
		{"/", "/", true, route.Params{}},
		{"/about", "/about", true, route.Params{}},
		{"/about", "/about/", true, route.Params{}},
		{"/about", "/contact", false, nil},
		{"/blog/:slug", "/blog/hello", true, route.Params{"slug": "hello"}},
		{"/blog/:slug", "/blog", false, nil},
		{"/blog/:slug", "/blog/a/b", false, nil},
		{"/blog/:slug", "/blog/hello%20world", true, route.Params{"slug": "hello world"}},
		{"/blog/:slug", "/blog/a%2Fb", true, route.Params{"slug": "a/b"}},
		{"/shop/:page?", "/shop", true, route.Params{}},
		{"/shop/:page?", "/shop/2", true, route.Params{"page": "2"}},
		{"/shop/:page?/items", "/shop/items", true, route.Params{}},
		{"/shop/:page?/items", "/shop/3/items", true, route.Params{"page": "3"}},
		{"/docs/:path*", "/docs", true, route.Params{"path": ""}},
		{"/docs/:path*", "/docs/a/b/c", true, route.Params{"path": "a/b/c"}},
		{"/files/:path+", "/files", false, nil},
		{"/files/:path+", "/files/a/b", true, route.Params{"path": "a/b"}},
		{`/users/:id(\d+)`, "/users/42", true, route.Params{"id": "42"}},
		{`/users/:id(\d+)`, "/users/abc", false, nil},
		{"/(marketing)/pricing", "/pricing", true, route.Params{}},
		{"/(marketing)/pricing", "/marketing/pricing", false, nil},
		{"/blog/:slug", "/blog/%zz", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			p, err := route.Compile(tt.pattern)
			require.NoError(t, err)

			params, ok := p.Match(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.params, params)
			}
		})
	}
}

func TestMatchUnicodeNormalization(t *testing.T) {
	t.Parallel()

	// "é" as e + combining acute accent, percent-encoded.
	decomposed := "/tags/cafe%CC%81"

	plain := route.MustCompile("/tags/:tag")
	params, ok := plain.Match(decomposed)
	require.True(t, ok)
	assert.Equal(t, "cafe\u0301", params.Get("tag"))

	normalized := route.MustCompile("/tags/:tag", route.WithUnicodeNormalization())
	params, ok = normalized.Match(decomposed)
	require.True(t, ok)
	assert.Equal(t, "caf\u00e9", params.Get("tag"))

	literal := route.MustCompile("/caf\u00e9", route.WithUnicodeNormalization())
	_, ok = literal.Match("/cafe%CC%81")
	assert.True(t, ok)
}

func TestURLAndCanonical(t *testing.T) {
	t.Parallel()

	p := route.MustCompile(`/(shop)/items/:id(\d+)/:rest*`)
	assert.Equal(t, `/items/:id(\d+)/:rest*`, p.URL())
	assert.Equal(t, `/items/:(\d+)/:*`, p.Canonical())
	assert.Equal(t, []string{"id", "rest"}, p.ParamNames())
	assert.True(t, p.HasCatchAll())
	assert.Len(t, p.Segments(), 4)

	a := route.MustCompile("/(a)/users/:id")
	b := route.MustCompile("/(b)/users/:name")
	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, "/", route.MustCompile("/(group)").Canonical())
}

func TestScoreOrdering(t *testing.T) {
	t.Parallel()

	// Declared in reverse specificity; a stable sort must reproduce the expected order.
	patterns := []string{
		"/:path*",
		"/blog/:rest*",
		"/blog/:slug?",
		"/:section/:slug",
		"/blog/:slug",
		"/blog/latest",
	}
	expected := []string{
		"/blog/latest",
		"/blog/:slug",
		"/blog/:slug?",
		"/:section/:slug",
		"/blog/:rest*",
		"/:path*",
	}

	compiled := make([]*route.Pattern, len(patterns))
	for i, s := range patterns {
		compiled[i] = route.MustCompile(s)
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Score().Compare(compiled[j].Score()) > 0
	})

	got := make([]string, len(compiled))
	for i, p := range compiled {
		got[i] = p.String()
	}
	assert.Equal(t, expected, got)
}

func TestScoreRegexRank(t *testing.T) {
	t.Parallel()

	literal := route.MustCompile("/users/me")
	param := route.MustCompile("/users/:name")
	numeric := route.MustCompile(`/users/:id(\d+)`)
	ranked := route.MustCompile(`/users/:id(\d+)`, route.WithRegexRank(route.RankLiteral))

	assert.Zero(t, numeric.Score().Compare(param.Score()), "default regex rank equals a parameter")
	assert.Zero(t, ranked.Score().Compare(literal.Score()))
	assert.Positive(t, ranked.Score().Compare(param.Score()))
	assert.Equal(t, []route.Rank{route.RankLiteral, route.RankLiteral}, ranked.Score().Ranks())
}

// Over a fixed corpus of patterns and paths, the best-scoring matching pattern is never
// parameterized when a literal pattern matches, and never a catch-all when a
// non-catch-all pattern matches.
func TestScoreProperties(t *testing.T) {
	t.Parallel()

	patterns := []*route.Pattern{
		route.MustCompile("/"),
		route.MustCompile("/docs"),
		route.MustCompile("/docs/intro"),
		route.MustCompile("/docs/:page"),
		route.MustCompile("/docs/:page?"),
		route.MustCompile("/docs/:rest*"),
		route.MustCompile("/docs/:rest+"),
		route.MustCompile("/:section"),
		route.MustCompile("/:section/:page"),
		route.MustCompile("/:all*"),
		route.MustCompile(`/docs/:n(\d+)`),
	}
	paths := []string{"/", "/docs", "/docs/intro", "/docs/42", "/docs/a/b", "/x", "/x/y", "/x/y/z"}

	for _, path := range paths {
		var best *route.Pattern
		var literalMatch, nonCatchAllMatch bool
		for _, p := range patterns {
			if _, ok := p.Match(path); !ok {
				continue
			}
			if p.String() == path {
				literalMatch = true
			}
			if !p.HasCatchAll() {
				nonCatchAllMatch = true
			}
			if best == nil || p.Score().Compare(best.Score()) > 0 {
				best = p
			}
		}

		require.NotNil(t, best, path)
		if literalMatch {
			assert.Equal(t, path, best.String(), "literal must win for %s", path)
		}
		if nonCatchAllMatch {
			assert.False(t, best.HasCatchAll(), "catch-all won for %s", path)
		}
	}
}

func TestTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		policy route.TrailingSlash
		in     string
		out    string
	}{
		{route.TrailingSlashNever, "/", "/"},
		{route.TrailingSlashNever, "/users/", "/users"},
		{route.TrailingSlashNever, "/users//", "/users"},
		{route.TrailingSlashNever, "/users", "/users"},
		{route.TrailingSlashAlways, "/", "/"},
		{route.TrailingSlashAlways, "/users", "/users/"},
		{route.TrailingSlashAlways, "/users/", "/users/"},
		{route.TrailingSlashPreserve, "/users/", "/users/"},
		{route.TrailingSlashPreserve, "/users", "/users"},
		{route.TrailingSlashNever, "", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String()+tt.in, func(t *testing.T) {
			t.Parallel()
			out := tt.policy.Normalize(tt.in)
			assert.Equal(t, tt.out, out)
			assert.Equal(t, out, tt.policy.Normalize(out), "normalization must be idempotent")
		})
	}
}

func TestParseTrailingSlash(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]route.TrailingSlash{
		"":         route.TrailingSlashNever,
		"never":    route.TrailingSlashNever,
		"ALWAYS":   route.TrailingSlashAlways,
		"preserve": route.TrailingSlashPreserve,
	} {
		got, err := route.ParseTrailingSlash(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := route.ParseTrailingSlash("sometimes")
	assert.ErrorIs(t, err, route.ErrInvalidPolicy)
}
