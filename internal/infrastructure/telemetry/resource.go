package telemetry

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// serviceVersion is stamped on every exported signal.
const serviceVersion = "1.0.0"

// shutdownTimeout caps how long a provider may block the exit path while
// flushing to the collector.
const shutdownTimeout = 10 * time.Second

// newServiceResource merges the SDK defaults with the service identity so
// traces, metrics and logs all carry the same service.name.
func newServiceResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build service resource: %w", err)
	}
	return res, nil
}
