package route

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Params holds percent-decoded parameter values keyed by parameter name.
type Params map[string]string

// Get returns the value of the named parameter.
func (p Params) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

// Match tests an escaped request path against the pattern and extracts parameters.
// A single trailing slash is ignored; trailing slash policy is applied before matching.
func (p *Pattern) Match(path string) (Params, bool) {
	if path == "" || path[0] != '/' {
		return nil, false
	}

	trimmed := strings.TrimSuffix(path[1:], "/")
	var parts []string
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}

	decoded := make([]string, len(parts))
	for i, part := range parts {
		v, err := url.PathUnescape(part)
		if err != nil {
			return nil, false
		}
		if p.unicode {
			v = norm.NFC.String(v)
		}
		decoded[i] = v
	}

	params := make(Params, len(p.matchable))
	if !p.matchFrom(0, decoded, params) {
		return nil, false
	}
	return params, true
}

// matchFrom backtracks over optional segments; every other segment kind is deterministic.
func (p *Pattern) matchFrom(si int, parts []string, params Params) bool {
	if si == len(p.matchable) {
		return len(parts) == 0
	}

	seg := p.matchable[si]
	switch seg.Kind {
	case SegmentLiteral:
		if len(parts) == 0 || parts[0] != seg.Value {
			return false
		}
		return p.matchFrom(si+1, parts[1:], params)

	case SegmentParam:
		if len(parts) == 0 || parts[0] == "" {
			return false
		}
		params[seg.Value] = parts[0]
		if p.matchFrom(si+1, parts[1:], params) {
			return true
		}
		delete(params, seg.Value)
		return false

	case SegmentRegexp:
		if len(parts) == 0 || !seg.rex.MatchString(parts[0]) {
			return false
		}
		params[seg.Value] = parts[0]
		if p.matchFrom(si+1, parts[1:], params) {
			return true
		}
		delete(params, seg.Value)
		return false

	case SegmentOptional:
		if len(parts) > 0 && parts[0] != "" {
			params[seg.Value] = parts[0]
			if p.matchFrom(si+1, parts[1:], params) {
				return true
			}
			delete(params, seg.Value)
		}
		return p.matchFrom(si+1, parts, params)

	case SegmentCatchAll:
		params[seg.Value] = strings.Join(parts, "/")
		return true

	case SegmentCatchAllPlus:
		if len(parts) == 0 {
			return false
		}
		params[seg.Value] = strings.Join(parts, "/")
		return true
	}

	return false
}
