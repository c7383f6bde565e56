package config

import "time"

// Observability configures OpenTelemetry for the miner. Both signals are
// exported over OTLP/gRPC when enabled and fall back to no-op providers
// otherwise.
type Observability struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name"`

	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig holds the configuration settings for metrics.
type MetricsConfig struct {
	Enable         bool              `yaml:"enable"`
	Endpoint       string            `yaml:"endpoint"`
	Headers        map[string]string `yaml:"headers"`
	ExportInterval time.Duration     `yaml:"export_interval"`
}

// TracingConfig holds the configuration settings for tracing.
type TracingConfig struct {
	Enable       bool              `yaml:"enable"`
	Endpoint     string            `yaml:"endpoint"`
	Headers      map[string]string `yaml:"headers"`
	Sampler      string            `yaml:"sampler"`       // "always_on" or "probability"
	SamplingRate float64           `yaml:"sampling_rate"` // Used if Sampler is "probability"
}
