package route

import (
	"fmt"
	"strings"
)

// TrailingSlash is the policy applied to request paths before matching.
type TrailingSlash uint8

const (
	// TrailingSlashNever strips the trailing slash: /users/ → /users.
	TrailingSlashNever TrailingSlash = iota
	// TrailingSlashAlways adds a trailing slash: /users → /users/.
	TrailingSlashAlways
	// TrailingSlashPreserve leaves the path untouched.
	TrailingSlashPreserve
)

// ParseTrailingSlash parses "never", "always" or "preserve".
func ParseTrailingSlash(s string) (TrailingSlash, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never":
		return TrailingSlashNever, nil
	case "always":
		return TrailingSlashAlways, nil
	case "preserve":
		return TrailingSlashPreserve, nil
	default:
		return TrailingSlashNever, fmt.Errorf("%w: '%s'", ErrInvalidPolicy, s)
	}
}

func (p TrailingSlash) String() string {
	switch p {
	case TrailingSlashAlways:
		return "always"
	case TrailingSlashPreserve:
		return "preserve"
	default:
		return "never"
	}
}

// Normalize returns the path the policy considers canonical. The root path is never changed.
func (p TrailingSlash) Normalize(path string) string {
	if path == "" {
		return "/"
	}
	if path == "/" {
		return path
	}

	switch p {
	case TrailingSlashNever:
		trimmed := strings.TrimRight(path, "/")
		if trimmed == "" {
			return "/"
		}
		return trimmed
	case TrailingSlashAlways:
		if !strings.HasSuffix(path, "/") {
			return path + "/"
		}
	}
	return path
}

// UnmarshalText implements encoding.TextUnmarshaler so the policy can be read
// from configuration.
func (p *TrailingSlash) UnmarshalText(text []byte) error {
	parsed, err := ParseTrailingSlash(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
