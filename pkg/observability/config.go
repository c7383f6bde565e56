package observability

import (
	"github.com/powledger/powledger/pkg/config"
)

// ServiceName is reported when the configuration does not name the service.
const ServiceName = "powledger"

// Instrument names.
const (
	MetricBlocksSealed       = "chain.blocks_sealed_total"
	MetricHashAttempts       = "chain.hash_attempts_total"
	MetricMiningDuration     = "chain.mining_duration_seconds"
	MetricValidationFailures = "chain.validation_failures_total"
)

func serviceName(cfg config.Observability) string {
	if cfg.ServiceName != "" {
		return cfg.ServiceName
	}
	return ServiceName
}
