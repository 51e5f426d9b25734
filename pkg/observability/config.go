package observability

import (
	"fmt"
	"log/slog"
)

// Config configures Init: service identity, logging, and whether tracing/
// metrics are wired up at all. LogLevel and the two enable flags mirror
// config.ObservabilityConfig field-for-field so callers can pass it through
// directly.
type Config struct {
	ServiceName string
	Environment string

	LogLevel string
	LogJSON  bool

	// TracingEnabled toggles whether spans are created with a real sampler
	// (AlwaysSample) versus a no-op tracer provider.
	TracingEnabled bool

	// MetricsAddr, if non-empty, is the listen address Init's Shutdown-paired
	// server exposes "/metrics" on (Prometheus exposition format). Empty
	// disables the HTTP server; the Meter is still usable in-process.
	MetricsAddr string
}

func parseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("observability: invalid log level %q: %w", level, err)
	}

	return l, nil
}
