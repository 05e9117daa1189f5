package route

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SegmentKind tags a pattern segment.
type SegmentKind uint8

const (
	SegmentLiteral      SegmentKind = iota // /blog
	SegmentParam                           // /:slug
	SegmentOptional                        // /:page?
	SegmentCatchAll                        // /:path*
	SegmentCatchAllPlus                    // /:path+
	SegmentRegexp                          // /:id(\d+)
	SegmentGroup                           // /(marketing)
)

// Rank is the specificity of a single segment. Higher is more specific.
type Rank uint8

const (
	RankCatchAll Rank = iota + 1
	RankOptional
	RankParam
	RankLiteral
)

// Segment is one compiled path pattern segment.
type Segment struct {
	Kind SegmentKind
	// Value is the literal text, the parameter name or the group name.
	Value string
	// Expr is the raw expression of a regexp segment.
	Expr string

	rex  *regexp.Regexp
	rank Rank
}

// Rank returns the segment rank used for scoring.
func (s Segment) Rank() Rank {
	return s.rank
}

func (s Segment) isCatchAll() bool {
	return s.Kind == SegmentCatchAll || s.Kind == SegmentCatchAllPlus
}

// Pattern is a compiled path pattern. It is immutable and safe for concurrent use.
type Pattern struct {
	raw       string
	segments  []Segment
	matchable []Segment
	catchAll  bool
	unicode   bool
}

// CompileOption configures pattern compilation.
type CompileOption func(*compileConfig)

type compileConfig struct {
	regexRank Rank
	unicode   bool
}

// WithRegexRank sets the declared specificity of regex segments in the pattern.
func WithRegexRank(r Rank) CompileOption {
	return func(c *compileConfig) {
		if r > 0 {
			c.regexRank = r
		}
	}
}

// WithUnicodeNormalization makes the matcher compare and return NFC-normalized segments.
func WithUnicodeNormalization() CompileOption {
	return func(c *compileConfig) {
		c.unicode = true
	}
}

// Compile parses a textual pattern into a Pattern.
func Compile(pattern string, opts ...CompileOption) (*Pattern, error) {
	cfg := compileConfig{regexRank: RankParam}
	for _, opt := range opts {
		opt(&cfg)
	}

	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: '%s' must start with '/'", ErrInvalidPattern, pattern)
	}

	p := &Pattern{raw: pattern, unicode: cfg.unicode}

	trimmed := strings.TrimSuffix(pattern[1:], "/")
	if trimmed == "" {
		return p, nil
	}

	seen := make(map[string]struct{})
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		seg, err := parseSegment(part, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w in '%s'", err, pattern)
		}

		if seg.Kind != SegmentLiteral && seg.Kind != SegmentGroup {
			if _, dup := seen[seg.Value]; dup {
				return nil, fmt.Errorf("%w: '%s' in '%s'", ErrDuplicateParam, seg.Value, pattern)
			}
			seen[seg.Value] = struct{}{}
		}

		if seg.isCatchAll() {
			if i != len(parts)-1 {
				return nil, fmt.Errorf("%w: '%s'", ErrCatchAllPosition, pattern)
			}
			p.catchAll = true
		}

		p.segments = append(p.segments, seg)
		if seg.Kind != SegmentGroup {
			p.matchable = append(p.matchable, seg)
		}
	}

	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, opts ...CompileOption) *Pattern {
	p, err := Compile(pattern, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(part string, cfg compileConfig) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("%w: empty segment", ErrInvalidPattern)
	}

	if part[0] == '(' {
		if len(part) < 3 || part[len(part)-1] != ')' {
			return Segment{}, fmt.Errorf("%w: malformed group '%s'", ErrInvalidPattern, part)
		}
		return Segment{Kind: SegmentGroup, Value: part[1 : len(part)-1]}, nil
	}

	if part[0] != ':' {
		if cfg.unicode {
			part = norm.NFC.String(part)
		}
		return Segment{Kind: SegmentLiteral, Value: part, rank: RankLiteral}, nil
	}

	end := 1
	for end < len(part) && isNameByte(part[end]) {
		end++
	}
	name := part[1:end]
	if name == "" {
		return Segment{}, fmt.Errorf("%w: parameter without name '%s'", ErrInvalidPattern, part)
	}

	switch rest := part[end:]; {
	case rest == "":
		return Segment{Kind: SegmentParam, Value: name, rank: RankParam}, nil
	case rest == "?":
		return Segment{Kind: SegmentOptional, Value: name, rank: RankOptional}, nil
	case rest == "*":
		return Segment{Kind: SegmentCatchAll, Value: name, rank: RankCatchAll}, nil
	case rest == "+":
		return Segment{Kind: SegmentCatchAllPlus, Value: name, rank: RankCatchAll}, nil
	case len(rest) > 2 && rest[0] == '(' && rest[len(rest)-1] == ')':
		expr := rest[1 : len(rest)-1]
		rex, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return Segment{}, fmt.Errorf("%w: '%s'", ErrInvalidRegexp, expr)
		}
		return Segment{Kind: SegmentRegexp, Value: name, Expr: expr, rex: rex, rank: cfg.regexRank}, nil
	default:
		return Segment{}, fmt.Errorf("%w: malformed parameter '%s'", ErrInvalidPattern, part)
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// String returns the pattern as it was declared.
func (p *Pattern) String() string {
	return p.raw
}

// Segments returns all segments including route groups.
func (p *Pattern) Segments() []Segment {
	return p.segments
}

// HasCatchAll reports whether the pattern ends with a catch-all segment.
func (p *Pattern) HasCatchAll() bool {
	return p.catchAll
}

// ParamNames returns parameter names in declaration order.
func (p *Pattern) ParamNames() []string {
	var names []string
	for _, seg := range p.matchable {
		if seg.Kind != SegmentLiteral {
			names = append(names, seg.Value)
		}
	}
	return names
}

// URL returns the matchable pattern with route groups stripped.
func (p *Pattern) URL() string {
	if len(p.matchable) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, seg := range p.matchable {
		b.WriteByte('/')
		switch seg.Kind {
		case SegmentLiteral:
			b.WriteString(seg.Value)
		case SegmentParam:
			b.WriteString(":" + seg.Value)
		case SegmentOptional:
			b.WriteString(":" + seg.Value + "?")
		case SegmentCatchAll:
			b.WriteString(":" + seg.Value + "*")
		case SegmentCatchAllPlus:
			b.WriteString(":" + seg.Value + "+")
		case SegmentRegexp:
			b.WriteString(":" + seg.Value + "(" + seg.Expr + ")")
		}
	}
	return b.String()
}

// Canonical returns the matchable pattern with groups stripped and parameter names erased.
// Two patterns with the same canonical form match exactly the same set of paths.
func (p *Pattern) Canonical() string {
	if len(p.matchable) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, seg := range p.matchable {
		b.WriteByte('/')
		switch seg.Kind {
		case SegmentLiteral:
			b.WriteString(seg.Value)
		case SegmentParam:
			b.WriteString(":")
		case SegmentOptional:
			b.WriteString(":?")
		case SegmentCatchAll:
			b.WriteString(":*")
		case SegmentCatchAllPlus:
			b.WriteString(":+")
		case SegmentRegexp:
			b.WriteString(":(" + seg.Expr + ")")
		}
	}
	return b.String()
}
