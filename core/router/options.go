package router

import (
	"log/slog"

	"github.com/dmitrymomot/fresco/core/island"
	"github.com/dmitrymomot/fresco/core/route"
	"github.com/dmitrymomot/fresco/pkg/report"
)

// Option configures a Dispatcher during creation.
type Option func(*Dispatcher)

// WithLogger sets the logger for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithReporter sets where unhandled errors are reported. Defaults to the logger.
func WithReporter(r report.Reporter) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithTrailingSlash sets the trailing slash policy.
func WithTrailingSlash(policy route.TrailingSlash) Option {
	return func(d *Dispatcher) {
		d.trailingSlash = policy
	}
}

// WithBuildID sets the build identifier.
func WithBuildID(id string) Option {
	return func(d *Dispatcher) {
		if id != "" {
			d.buildID = id
		}
	}
}

// WithPartialParam sets the query parameter flagging a partial navigation.
func WithPartialParam(param string) Option {
	return func(d *Dispatcher) {
		if param != "" {
			d.partialParam = param
		}
	}
}

// WithStrictPartials fails renders that declare a region name twice.
func WithStrictPartials() Option {
	return func(d *Dispatcher) {
		d.strictPartials = true
	}
}

// WithManifest sets the island manifest used to resolve rendered island types.
func WithManifest(m island.Manifest) Option {
	return func(d *Dispatcher) {
		d.manifest = m
	}
}

// WithConfig applies a loaded Config.
func WithConfig(cfg Config) Option {
	return func(d *Dispatcher) {
		d.trailingSlash = cfg.TrailingSlash
		WithBuildID(cfg.BuildID)(d)
		WithPartialParam(cfg.PartialParam)(d)
		d.strictPartials = cfg.StrictPartials
	}
}
