package fsroute

import (
	"fmt"
	"strings"
)

// role is what a namespace key declares.
type role uint8

const (
	roleRoute role = iota
	roleMiddleware
	roleLayout
	roleApp
	roleNotFound
	roleError
)

func (r role) String() string {
	switch r {
	case roleMiddleware:
		return "_middleware"
	case roleLayout:
		return "_layout"
	case roleApp:
		return "_app"
	case roleNotFound:
		return "_404"
	case roleError:
		return "_500"
	}
	return "route"
}

var specials = map[string]role{
	"_middleware": roleMiddleware,
	"_layout":     roleLayout,
	"_app":        roleApp,
	"_404":        roleNotFound,
	"_500":        roleError,
}

// parsedKey is a namespace key split into its directory and file parts.
type parsedKey struct {
	role role
	// dir is the namespace directory, groups included; "" is the root.
	dir string
	// dirSegments are the directory segments in pattern syntax.
	dirSegments []string
	// leaf is the pattern segment of a route file; empty for index routes.
	leaf string
}

func parseKey(key string) (parsedKey, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return parsedKey{}, fmt.Errorf("%w: '%s'", ErrInvalidKey, key)
	}

	parts := strings.Split(key, "/")
	dirs, base := parts[:len(parts)-1], parts[len(parts)-1]

	pk := parsedKey{dir: strings.Join(dirs, "/")}
	for _, d := range dirs {
		if strings.HasPrefix(d, "_") {
			return parsedKey{}, fmt.Errorf("%w: directory '%s' in '%s'", ErrInvalidKey, d, key)
		}
		seg, err := convertSegment(d)
		if err != nil {
			return parsedKey{}, fmt.Errorf("%w in '%s'", err, key)
		}
		pk.dirSegments = append(pk.dirSegments, seg)
	}

	if strings.HasPrefix(base, "_") {
		r, ok := specials[base]
		if !ok {
			return parsedKey{}, fmt.Errorf("%w: '%s'", ErrUnknownSpecial, key)
		}
		if r == roleApp && pk.dir != "" {
			return parsedKey{}, fmt.Errorf("%w: '%s'", ErrAppNotAtRoot, key)
		}
		pk.role = r
		return pk, nil
	}

	if strings.HasPrefix(base, "(") {
		return parsedKey{}, fmt.Errorf("%w: group '%s' must be a directory", ErrInvalidKey, base)
	}

	pk.role = roleRoute
	if base == "index" {
		return pk, nil
	}

	seg, err := convertSegment(base)
	if err != nil {
		return parsedKey{}, fmt.Errorf("%w in '%s'", err, key)
	}
	pk.leaf = seg
	return pk, nil
}

// convertSegment maps a file-name segment to pattern syntax:
//
//	[[name]]   :name?
//	[...name]  :name*
//	[name]     :name
//	(group)    (group)
func convertSegment(s string) (string, error) {
	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty segment", ErrInvalidKey)
	case strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]"):
		return paramSegment(s[2:len(s)-2], "?")
	case strings.HasPrefix(s, "[...") && strings.HasSuffix(s, "]"):
		return paramSegment(s[4:len(s)-1], "*")
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return paramSegment(s[1:len(s)-1], "")
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		if len(s) < 3 || strings.ContainsAny(s[1:len(s)-1], "()[]:") {
			return "", fmt.Errorf("%w: malformed group '%s'", ErrInvalidKey, s)
		}
		return s, nil
	case strings.ContainsAny(s, "[]():*?"):
		return "", fmt.Errorf("%w: malformed segment '%s'", ErrInvalidKey, s)
	}
	return s, nil
}

func paramSegment(name, suffix string) (string, error) {
	if name == "" || strings.ContainsAny(name, "[]().:/*?") {
		return "", fmt.Errorf("%w: malformed parameter '%s'", ErrInvalidKey, name)
	}
	return ":" + name + suffix, nil
}

// dirPattern returns the pattern of a directory URL.
func dirPattern(segments []string) string {
	return "/" + strings.Join(segments, "/")
}

// ancestors returns dir and every parent directory up to the root, innermost first.
func ancestors(dir string) []string {
	out := []string{dir}
	for dir != "" {
		i := strings.LastIndexByte(dir, '/')
		if i < 0 {
			dir = ""
		} else {
			dir = dir[:i]
		}
		out = append(out, dir)
	}
	return out
}
