package simple

import (
	"time"

	"github.com/dmitrymomot/fresco/core/router"
)

// Config holds the application settings. Load it with config.Load.
type Config struct {
	Router router.Config

	AppName  string `env:"APP_NAME" envDefault:"fresco"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Addr            string        `env:"HTTP_ADDR" envDefault:"localhost:8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Empty disables the metrics endpoint.
	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`

	// Empty disables Sentry reporting.
	SentryDSN string `env:"SENTRY_DSN"`
}
