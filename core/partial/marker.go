package partial

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultParam is the query parameter flagging a partial navigation.
	DefaultParam = "fresh-partial"
	// Header flags a partial navigation when the query parameter is absent.
	Header = "X-Fresh-Partial"
	// ContentType is the media type of an encoded Envelope.
	ContentType = "application/vnd.fresh-partial+json"
)

const (
	startPrefix = "frsh-partial:"
	endPrefix   = "/frsh-partial:"
)

// Marker is a parsed region boundary comment.
type Marker struct {
	Name string
	Mode Mode
	End  bool
}

// StartMarker returns the comment opening a region.
func StartMarker(name string, mode Mode) string {
	return "<!--" + startPrefix + name + ":" + string(mode) + "-->"
}

// EndMarker returns the comment closing a region.
func EndMarker(name string) string {
	return "<!--" + endPrefix + name + "-->"
}

// ParseMarker parses the data of an HTML comment. ok is false for comments that
// are not region markers.
func ParseMarker(data string) (m Marker, ok bool, err error) {
	data = strings.TrimSpace(data)

	switch {
	case strings.HasPrefix(data, endPrefix):
		name := strings.TrimPrefix(data, endPrefix)
		if !ValidName(name) {
			return Marker{}, true, fmt.Errorf("%w: %q", ErrMalformedMarker, data)
		}
		return Marker{Name: name, End: true}, true, nil

	case strings.HasPrefix(data, startPrefix):
		rest := strings.TrimPrefix(data, startPrefix)
		i := strings.LastIndexByte(rest, ':')
		if i < 0 || !ValidName(rest[:i]) {
			return Marker{}, true, fmt.Errorf("%w: %q", ErrMalformedMarker, data)
		}
		mode, err := ParseMode(rest[i+1:])
		if err != nil {
			return Marker{}, true, fmt.Errorf("%w: %w", ErrMalformedMarker, err)
		}
		return Marker{Name: rest[:i], Mode: mode}, true, nil
	}

	return Marker{}, false, nil
}

// ValidName reports whether name can be used as a region name: non-empty and made of
// letters, digits, '_', '-', '.' or '/'.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == '/':
		default:
			return false
		}
	}
	return true
}

// FromRequest returns the region names requested by a partial navigation.
// The query parameter takes precedence over the header; the value is a
// comma-separated list. An empty param selects DefaultParam.
func FromRequest(r *http.Request, param string) ([]string, bool) {
	if param == "" {
		param = DefaultParam
	}

	raw := r.URL.Query().Get(param)
	if raw == "" {
		raw = r.Header.Get(Header)
	}
	if raw == "" {
		return nil, false
	}

	names := ParseNames(raw)
	return names, len(names) > 0
}

// ParseNames splits a comma-separated list of region names, dropping blanks,
// invalid names and repeats.
func ParseNames(raw string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if !ValidName(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
