package router

import (
	"github.com/dmitrymomot/fresco/core/fsroute"
	"github.com/dmitrymomot/fresco/core/partial"
	"github.com/dmitrymomot/fresco/core/route"
)

// Config holds dispatcher settings with environment variable support.
// Load it with config.Load.
type Config struct {
	// Trailing slash policy: never, always or preserve.
	TrailingSlash route.TrailingSlash `env:"FRESCO_TRAILING_SLASH" envDefault:"never"`

	// Build identifier embedded in documents and partial envelopes.
	// A random one is generated when empty.
	BuildID string `env:"FRESCO_BUILD_ID"`

	// Query parameter flagging a partial navigation.
	PartialParam string `env:"FRESCO_PARTIAL_PARAM" envDefault:"fresh-partial"`

	// NFC-normalise decoded route parameters.
	UnicodePaths bool `env:"FRESCO_UNICODE_PATHS" envDefault:"false"`

	// Fail a render that declares the same region name twice.
	StrictPartials bool `env:"FRESCO_STRICT_PARTIALS" envDefault:"false"`
}

// DefaultConfig returns a Config with the defaults of the env tags.
func DefaultConfig() Config {
	return Config{
		TrailingSlash: route.TrailingSlashNever,
		PartialParam:  partial.DefaultParam,
	}
}

// BuildOptions returns the route table options implied by the config.
func (c Config) BuildOptions() []fsroute.Option {
	if !c.UnicodePaths {
		return nil
	}
	return []fsroute.Option{fsroute.WithCompileOptions(route.WithUnicodeNormalization())}
}
